package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/motorlot/lotsync/pkg/errors"
)

// UploadMedia uploads raw image bytes to the media endpoint. The backend
// takes the bytes as the request body with the filename carried in the
// Content-Disposition header, and responds with the created attachment.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, errors.NewValidationError("data", nil, "media upload requires a non-empty body")
	}
	endpoint := c.url("wp", "v2", "media")
	headers := map[string]string{
		"Content-Type":        contentType,
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	}

	var created Media
	if err := c.RequestRaw(ctx, http.MethodPost, endpoint, data, headers, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, errors.NewRequestError(http.MethodPost, endpoint, 0, "media response carried no id")
	}
	return created.ID, nil
}

// SetMediaAlt sets the alt text on an uploaded attachment.
func (c *Client) SetMediaAlt(ctx context.Context, id int, alt string) error {
	endpoint := c.url("wp", "v2", "media", strconv.Itoa(id))
	return c.Request(ctx, http.MethodPost, endpoint, map[string]any{"alt_text": alt}, nil)
}
