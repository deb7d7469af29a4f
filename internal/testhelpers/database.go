package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// SetupTestDB opens an in-memory SQLite database with the full schema
// migrated. Each call gets an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.New().String()+"?mode=memory&cache=shared&_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateTestUser inserts a user with a bcrypt-hashed password and
// returns it.
func CreateTestUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestTag inserts a tag.
func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name, Color: "#CD5C5C", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateTestIngredient inserts an ingredient.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateTestRecipe inserts a minimal recipe owned by the given author.
func CreateTestRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID, name string) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Image:       "/media/recipes/test.jpg",
		Text:        "Test recipe text",
		CookingTime: 10,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}
