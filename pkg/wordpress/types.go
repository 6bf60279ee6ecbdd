// Package wordpress implements the authenticated REST client for the content
// backend: post search/create/update on a custom collection, taxonomy term
// lookup and creation, relation assertions, media upload, and the JWT token
// lifecycle with a single transparent retry when the backend rejects a
// cached token.
package wordpress

import "time"

// Publication states used by the sync engine.
const (
	StatusPublish = "publish"
	StatusTrash   = "trash"
)

// Post is a content object on the custom collection endpoint. The endpoint
// returns flat strings for title and content, meta values wrapped in
// single-element arrays, and taxonomy term IDs keyed by taxonomy name.
type Post struct {
	ID            int              `json:"id,omitempty"`
	Title         string           `json:"title,omitempty"`
	Content       string           `json:"content,omitempty"`
	Status        string           `json:"status,omitempty"`
	FeaturedMedia int              `json:"featured_media,omitempty"`
	Meta          map[string]any   `json:"meta,omitempty"`
	Taxonomies    map[string][]int `json:"taxonomies,omitempty"`
}

// Term is a taxonomy term. The slug is the de-duplication key: find by slug
// always wins over create.
type Term struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int    `json:"parent,omitempty"`
}

// Relation is a directed parent/child edge asserted on the relations
// endpoint. StoreItemsType "replace" makes the call define the current child
// set for (parent, relation) rather than append to it.
type Relation struct {
	ParentID       int    `json:"parent_id"`
	ChildID        int    `json:"child_id"`
	Context        string `json:"context"`
	StoreItemsType string `json:"store_items_type"`
	RelationID     int    `json:"relation_id"`
}

// NewRelation builds a replace-semantics parent/child edge.
func NewRelation(relationID, parentID, childID int) Relation {
	return Relation{
		ParentID:       parentID,
		ChildID:        childID,
		Context:        "parent",
		StoreItemsType: "replace",
		RelationID:     relationID,
	}
}

// Media is an uploaded media asset.
type Media struct {
	ID      int    `json:"id"`
	AltText string `json:"alt_text,omitempty"`
}

// Token is a cached auth token with its decoded expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token exists and has not expired at the given
// instant.
func (t Token) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// TokenStore persists the cached token across runs. Implementations must
// tolerate an empty store (first run).
type TokenStore interface {
	LoadToken() (Token, error)
	SaveToken(Token) error
}
