package types

import "github.com/google/uuid"

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// RecipeIngredientInput is one (ingredient id, amount) pair in a recipe
// write payload.
type RecipeIngredientInput struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// List-level rules (non-empty, no duplicates, positive amounts) are
// checked in the service so their messages stay uniform.
type CreateRecipeRequest struct {
	Name        string                  `json:"name" binding:"required,max=255"`
	Text        string                  `json:"text"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time" binding:"required,min=1,max=90"`
	Ingredients []RecipeIngredientInput `json:"ingredients"`
	Tags        []uuid.UUID             `json:"tags"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Nil slices mean "not supplied"; a supplied list replaces the stored
// set wholesale.
type UpdateRecipeRequest struct {
	Name        *string                  `json:"name"`
	Text        *string                  `json:"text"`
	Image       *string                  `json:"image"`
	CookingTime *int                     `json:"cooking_time"`
	Ingredients *[]RecipeIngredientInput `json:"ingredients"`
	Tags        *[]uuid.UUID             `json:"tags"`
}

// RecipeListFilter collects the supported recipe list filters.
type RecipeListFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}
