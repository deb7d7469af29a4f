package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

// ErrNotSubscribed reports an unsubscribe for an edge that does not
// exist. It is deliberately distinct from the tolerant favorite/cart
// removals.
var ErrNotSubscribed = errors.New("not subscribed")

// SubscriptionService manages the directed follower edge between users.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe creates the follower edge and returns the followed author's
// annotated profile. recipesLimit caps the nested recipe list; zero
// means no cap.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if userID == authorID {
		return nil, validationErr("you cannot subscribe to yourself")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("already subscribed")
	}

	edge := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		// Lost a concurrent race; the unique index is the backstop.
		if isUniqueViolation(err) {
			return nil, validationErr("already subscribed")
		}
		return nil, err
	}

	return s.annotateAuthor(ctx, &author, recipesLimit)
}

// Unsubscribe deletes the edge. A missing edge yields ErrNotSubscribed,
// which the api layer reports as a non-fatal status rather than a hard
// failure.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// ListSubscriptions returns a page of the authors the user follows,
// newest subscription first, each annotated like a subscribe response.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uuid.UUID, offset, limit, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
			Where("subscriptions.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := base().
		Order("subscriptions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	results := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := s.annotateAuthor(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *resp)
	}
	return results, total, nil
}

func (s *SubscriptionService) annotateAuthor(ctx context.Context, author *models.User, recipesLimit int) (*types.SubscriptionResponse, error) {
	var recipesCount int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&recipesCount).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	shorts := make([]types.RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, types.RecipeShortResponse{
			ID:          recipes[i].ID,
			Name:        recipes[i].Name,
			Image:       recipes[i].Image,
			CookingTime: recipes[i].CookingTime,
		})
	}

	return &types.SubscriptionResponse{
		UserResponse: types.UserResponse{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
		},
		RecipesCount: recipesCount,
		Recipes:      shorts,
	}, nil
}
