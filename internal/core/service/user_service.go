package service

import (
	"context"

	"github.com/rl1809/botshop/internal/core/domain"
)

type UserService struct {
	users *Collection[domain.User]
}

func NewUserService(c *Collections) *UserService {
	return &UserService{users: c.Users}
}

// UpsertUser stores the profile, replacing any previous one.
func (s *UserService) UpsertUser(ctx context.Context, user domain.User) (string, error) {
	_, err := s.users.Update(ctx, func(users map[string]domain.User) (bool, error) {
		if prev, ok := users[user.ID]; ok && prev == user {
			return false, nil
		}
		users[user.ID] = user
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetUser returns nil for unknown users.
func (s *UserService) GetUser(ctx context.Context, id string) *domain.User {
	u, ok := s.users.Get(ctx, id)
	if !ok {
		return nil
	}
	return &u
}

func (s *UserService) ListUsers(ctx context.Context) map[string]domain.User {
	return s.users.All(ctx)
}
