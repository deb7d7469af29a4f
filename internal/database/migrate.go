package database

import (
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// RunMigrations creates or updates the schema for every model the
// application persists.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
}
