package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskboard/client/internal/model"
)

// ListProjects fetches all projects visible to the current user.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := c.get(ctx, "/projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project. The name must be non-empty.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	body := map[string]string{
		"name":        name,
		"description": description,
	}
	var project model.Project
	if err := c.post(ctx, "/projects", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
