package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// ShoppingListService flattens every ingredient of every recipe in the
// user's cart into one summed, alphabetized list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type shoppingListRow struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// BuildShoppingList groups the cart's ingredient rows by (name, unit),
// sums the amounts and renders one line per group. An empty cart yields
// an empty document.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uuid.UUID) (string, error) {
	var rows []shoppingListRow
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d", row.Name, row.MeasurementUnit, row.Amount))
	}
	return strings.Join(lines, "\n"), nil
}
