package api

import "context"

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var resp LoginResponse
	if err := c.post(ctx, "/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. It does not log the account in.
func (c *Client) Register(ctx context.Context, username, password, role string) error {
	body := map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}
	return c.post(ctx, "/register", body, nil)
}
