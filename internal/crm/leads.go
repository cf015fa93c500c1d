package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hay-kot/leadr/internal/core/feed"
	"github.com/hay-kot/leadr/internal/core/lead"
)

// Login exchanges credentials for a bearer token. On failure the returned
// error carries the server message, see Message.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", false, body, &out); err != nil {
		return "", err
	}

	if out.Token == "" {
		return "", &RequestError{
			Method:  http.MethodPost,
			Path:    "/login",
			Status:  http.StatusOK,
			Message: "response did not include a token",
		}
	}
	return out.Token, nil
}

// List fetches every lead.
func (c *Client) List(ctx context.Context) ([]lead.Lead, error) {
	var leads []lead.Lead
	if err := c.do(ctx, http.MethodGet, "/leads", true, nil, &leads); err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []lead.Lead{}
	}
	return leads, nil
}

// Create validates fields and creates a lead. The server assigns the id.
func (c *Client) Create(ctx context.Context, fields lead.Fields) (lead.Lead, error) {
	if err := fields.Validate(); err != nil {
		return lead.Lead{}, err
	}

	var created lead.Lead
	if err := c.do(ctx, http.MethodPost, "/leads", true, fields, &created); err != nil {
		return lead.Lead{}, err
	}
	return created, nil
}

// Update replaces every mutable field of the lead with the given id.
func (c *Client) Update(ctx context.Context, id string, fields lead.Fields) (lead.Lead, error) {
	if id == "" {
		return lead.Lead{}, errors.New("update: empty lead id")
	}
	if err := fields.Validate(); err != nil {
		return lead.Lead{}, err
	}

	var updated lead.Lead
	if err := c.do(ctx, http.MethodPut, leadPath(id), true, fields, &updated); err != nil {
		return lead.Lead{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	return updated, nil
}

// Delete removes the lead with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("delete: empty lead id")
	}
	return c.do(ctx, http.MethodDelete, leadPath(id), true, nil, nil)
}

// ExternalUsers fetches the external data collection.
func (c *Client) ExternalUsers(ctx context.Context) ([]feed.User, error) {
	var users []feed.User
	if err := c.do(ctx, http.MethodGet, "/external-data", true, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func leadPath(id string) string {
	return fmt.Sprintf("/leads/%s", url.PathEscape(id))
}
