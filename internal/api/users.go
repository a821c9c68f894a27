package api

import (
	"context"

	"github.com/taskboard/client/internal/model"
)

// ListUsers fetches all user accounts. Requires a moderator or admin role
// server-side; callers just see the resulting APIError otherwise.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates an account through the user management endpoint.
func (c *Client) CreateUser(ctx context.Context, username, password, role string) (*model.User, error) {
	body := map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}
	var user model.User
	if err := c.post(ctx, "/users", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
