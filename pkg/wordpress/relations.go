package wordpress

import (
	"context"
	"net/http"
	"strconv"
)

// SetRelation asserts a parent/child edge on the relations endpoint. With
// replace semantics the call defines the current child set for the parent
// under that relation, so re-asserting the same edge is idempotent.
func (c *Client) SetRelation(ctx context.Context, rel Relation) error {
	endpoint := c.url(c.cfg.RelationsPath, strconv.Itoa(rel.RelationID))
	return c.Request(ctx, http.MethodPost, endpoint, rel, nil)
}
