package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

// RecipeService handles the recipe aggregate: the recipe row, its tag
// set and its ingredient rows are written as one transactional unit.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

// NewRecipeService creates a new RecipeService instance. The image
// service may be nil; image payloads are then stored as given.
func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// validateIngredients applies the list-level rules in their contract
// order: list present, no duplicate ids, every amount positive.
func validateIngredients(ingredients []types.RecipeIngredientInput) error {
	if len(ingredients) == 0 {
		return validationErr("at least one ingredient required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ingredients))
	for _, ing := range ingredients {
		if _, dup := seen[ing.ID]; dup {
			return validationErr("ingredients must not repeat")
		}
		seen[ing.ID] = struct{}{}
	}
	for _, ing := range ingredients {
		if ing.Amount <= 0 {
			return validationErr("amount must be positive")
		}
	}
	return nil
}

func validateTags(tags []uuid.UUID) error {
	if len(tags) == 0 {
		return validationErr("at least one tag required")
	}
	seen := make(map[uuid.UUID]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			return validationErr("tags must not repeat")
		}
		seen[tag] = struct{}{}
	}
	return nil
}

func validateRecipePayload(ingredients []types.RecipeIngredientInput, tags []uuid.UUID) error {
	if err := validateIngredients(ingredients); err != nil {
		return err
	}
	return validateTags(tags)
}

// CreateRecipe persists the recipe with its tag set and ingredient rows
// in a single transaction. An unresolvable ingredient or tag id aborts
// the whole write.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	if err := validateRecipePayload(req.Ingredients, req.Tags); err != nil {
		return nil, err
	}

	image, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       image,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
		return insertRecipeIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, &authorID, recipe.ID)
}

// UpdateRecipe applies field updates and, when a tag or ingredient list
// is supplied, replaces the stored set wholesale (clear then insert)
// inside one transaction. Only the author may update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrPermissionDenied
	}

	// An omitted collection keeps its stored (already valid) set; a
	// supplied one is checked with the same rules as create.
	if req.Ingredients != nil {
		if err := validateIngredients(*req.Ingredients); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		if err := validateTags(*req.Tags); err != nil {
			return nil, err
		}
	}
	if req.CookingTime != nil && (*req.CookingTime < 1 || *req.CookingTime > 90) {
		return nil, validationErr("cooking time must be between 1 and 90 minutes")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	if req.Image != nil {
		image, err := s.storeImage(ctx, *req.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = image
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Tags != nil {
			resolved, err := resolveTags(tx, *req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Tags").Replace(&resolved); err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := insertRecipeIngredients(tx, recipe.ID, *req.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, &userID, recipe.ID)
}

// DeleteRecipe removes the recipe together with its ingredient rows and
// any favorite/cart memberships referencing it. Only the author may
// delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != userID {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// GetRecipe returns the read representation of one recipe with the
// membership flags computed for the requesting identity.
func (s *RecipeService) GetRecipe(ctx context.Context, requester *uuid.UUID, recipeID uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	query := s.withMembershipFlags(s.db.WithContext(ctx).Model(&models.Recipe{}), requester).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")
	if err := query.First(&recipe, "recipes.id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	subscribed := map[uuid.UUID]bool{}
	if requester != nil {
		var err error
		subscribed, err = s.subscribedAuthors(ctx, *requester, []uuid.UUID{recipe.AuthorID})
		if err != nil {
			return nil, err
		}
	}

	resp := recipeToResponse(&recipe, subscribed)
	return &resp, nil
}

// ListRecipes returns a page of recipes ordered newest-first, filtered
// and annotated for the requesting identity.
func (s *RecipeService) ListRecipes(ctx context.Context, requester *uuid.UUID, filter types.RecipeListFilter, offset, limit int) ([]types.RecipeResponse, int64, error) {
	filtered := func() *gorm.DB {
		return s.applyRecipeFilters(s.db.WithContext(ctx).Model(&models.Recipe{}), requester, filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	query := s.withMembershipFlags(filtered(), requester).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	subscribed := map[uuid.UUID]bool{}
	if requester != nil && len(recipes) > 0 {
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for i := range recipes {
			authorIDs = append(authorIDs, recipes[i].AuthorID)
		}
		var err error
		subscribed, err = s.subscribedAuthors(ctx, *requester, authorIDs)
		if err != nil {
			return nil, 0, err
		}
	}

	results := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, recipeToResponse(&recipes[i], subscribed))
	}
	return results, total, nil
}

// AddFavorite inserts the (user, recipe) favorite pair. The unique
// index is the only guard against concurrent double-adds; the losing
// insert comes back as ErrConflict.
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	return s.addMembership(ctx, userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID})
}

// RemoveFavorite deletes the pair if present. Removing an absent
// favorite is not an error.
func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{}).Error
}

// AddToCart inserts the (user, recipe) shopping-cart pair.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	return s.addMembership(ctx, userID, recipeID, &models.ShoppingCart{UserID: userID, RecipeID: recipeID})
}

// RemoveFromCart deletes the pair if present, tolerating absence.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCart{}).Error
}

func (s *RecipeService) addMembership(ctx context.Context, userID, recipeID uuid.UUID, row interface{}) (*types.RecipeShortResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return &types.RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}, nil
}

func (s *RecipeService) requireRecipe(ctx context.Context, recipeID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// withMembershipFlags annotates the query with correlated EXISTS checks
// so the per-recipe flags come back in the same result set instead of
// one query per listed recipe.
func (s *RecipeService) withMembershipFlags(query *gorm.DB, requester *uuid.UUID) *gorm.DB {
	if requester == nil {
		return query
	}
	return query.Select(
		"recipes.*, "+
			"EXISTS(SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?) AS is_favorited, "+
			"EXISTS(SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?) AS is_in_shopping_cart",
		*requester, *requester)
}

func (s *RecipeService) applyRecipeFilters(query *gorm.DB, requester *uuid.UUID, filter types.RecipeListFilter) *gorm.DB {
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}
	// The membership filters only take effect for authenticated callers.
	if filter.IsFavorited && requester != nil {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("favorites").
				Select("favorites.recipe_id").
				Where("favorites.user_id = ?", *requester))
	}
	if filter.IsInShoppingCart && requester != nil {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("shopping_carts").
				Select("shopping_carts.recipe_id").
				Where("shopping_carts.user_id = ?", *requester))
	}
	return query
}

func (s *RecipeService) subscribedAuthors(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	subscribed := make(map[uuid.UUID]bool, len(rows))
	for i := range rows {
		subscribed[rows[i].AuthorID] = true
	}
	return subscribed, nil
}

func (s *RecipeService) storeImage(ctx context.Context, image string) (string, error) {
	if s.images == nil {
		return image, nil
	}
	return s.images.StoreRecipeImage(ctx, image)
}

func resolveTags(tx *gorm.DB, tagIDs []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, ErrNotFound
	}
	return tags, nil
}

// insertRecipeIngredients resolves every ingredient id and bulk-inserts
// the child rows. An unknown id aborts the enclosing transaction so no
// partial ingredient list is ever visible.
func insertRecipeIngredients(tx *gorm.DB, recipeID uuid.UUID, inputs []types.RecipeIngredientInput) error {
	rows := make([]models.RecipeIngredient, 0, len(inputs))
	for _, input := range inputs {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, "id = ?", input.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredient.ID,
			Amount:       input.Amount,
		})
	}
	return tx.Create(&rows).Error
}

func recipeToResponse(recipe *models.Recipe, subscribed map[uuid.UUID]bool) types.RecipeResponse {
	tags := make([]types.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, types.TagResponse{
			ID:    tag.ID,
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}

	ingredients := make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	return types.RecipeResponse{
		ID:   recipe.ID,
		Tags: tags,
		Author: types.UserResponse{
			ID:           recipe.Author.ID,
			Email:        recipe.Author.Email,
			Username:     recipe.Author.Username,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			IsSubscribed: subscribed[recipe.AuthorID],
		},
		Ingredients:      ingredients,
		IsFavorited:      recipe.IsFavorited,
		IsInShoppingCart: recipe.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}
}
