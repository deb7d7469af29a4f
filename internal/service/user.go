package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram-v2/backend/internal/models"
	"github.com/pageza/foodgram-v2/backend/internal/types"
)

// UserService serves user listings annotated with the requesting
// identity's subscription state.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListUsers returns a page of users. search, when set, is a prefix
// match on the username.
func (s *UserService) ListUsers(ctx context.Context, requester *uuid.UUID, search string, offset, limit int) ([]types.UserResponse, int64, error) {
	base := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.User{})
		if search != "" {
			query = query.Where("username LIKE ?", search+"%")
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := s.withSubscriptionFlag(base(), requester).
		Order("users.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	results := make([]types.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, userToResponse(&users[i]))
	}
	return results, total, nil
}

// GetUser returns one user annotated for the requester.
func (s *UserService) GetUser(ctx context.Context, requester *uuid.UUID, userID uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	query := s.withSubscriptionFlag(s.db.WithContext(ctx).Model(&models.User{}), requester)
	if err := query.First(&user, "users.id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := userToResponse(&user)
	return &resp, nil
}

func (s *UserService) withSubscriptionFlag(query *gorm.DB, requester *uuid.UUID) *gorm.DB {
	if requester == nil {
		return query
	}
	return query.Select(
		"users.*, EXISTS(SELECT 1 FROM subscriptions WHERE subscriptions.author_id = users.id AND subscriptions.user_id = ?) AS is_subscribed",
		*requester)
}

func userToResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: user.IsSubscribed,
	}
}
