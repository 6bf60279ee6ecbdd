package wordpress

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/motorlot/lotsync/pkg/errors"
)

// FindPostByOrdenCompra looks up a post by its purchase-order key. Returns 0
// when no post matches; the key is unique on the backend so at most one
// result is expected.
func (c *Client) FindPostByOrdenCompra(ctx context.Context, ordenCompra string) (int, error) {
	endpoint := c.postsURL() + "?ordencompra=" + url.QueryEscape(ordenCompra)

	var results []Post
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].ID, nil
}

// GetPost fetches the full post, including meta and taxonomy assignments,
// for change detection. The collection endpoint answers id filters with an
// array; the first element is the post.
func (c *Client) GetPost(ctx context.Context, id int) (*Post, error) {
	endpoint := c.postsURL() + "?id=" + strconv.Itoa(id)

	var results []Post
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.NewNotFoundError("post", strconv.Itoa(id))
	}
	return &results[0], nil
}

// CreatePost creates a new post and returns its assigned ID.
func (c *Client) CreatePost(ctx context.Context, post *Post) (int, error) {
	var created Post
	if err := c.Request(ctx, http.MethodPost, c.postsURL(), post, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, errors.NewRequestError(http.MethodPost, c.postsURL(), 0, "create response carried no id")
	}
	return created.ID, nil
}

// UpdatePost sends a partial update containing only the fields that changed.
// Callers pass an empty map check upstream; an empty payload here is a
// programming error, not a no-op.
func (c *Client) UpdatePost(ctx context.Context, id int, fields map[string]any) error {
	if len(fields) == 0 {
		return errors.NewValidationError("fields", fields, "partial update requires at least one field")
	}
	endpoint := c.postsURL(strconv.Itoa(id))
	return c.Request(ctx, http.MethodPost, endpoint, fields, nil)
}

// TrashPost moves a post to trash via a status-only partial update.
func (c *Client) TrashPost(ctx context.Context, id int) error {
	return c.UpdatePost(ctx, id, map[string]any{"status": StatusTrash})
}
