// Package differ computes the minimal partial update between the desired
// state of a post and what the backend currently holds. The backend returns
// meta values wrapped in single-element arrays and taxonomy assignments as
// unordered ID lists; both quirks are normalized away before comparison so
// that a cosmetic representation difference never produces a write.
package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/motorlot/lotsync/pkg/wordpress"
)

// ChangeType classifies a field change.
type ChangeType string

const (
	ChangeTypeAdded    ChangeType = "added"
	ChangeTypeModified ChangeType = "modified"
	ChangeTypeRemoved  ChangeType = "removed"
)

// FieldChange records one difference between desired and existing state.
type FieldChange struct {
	Path     string     `json:"path"`
	OldValue any        `json:"old_value,omitempty"`
	NewValue any        `json:"new_value,omitempty"`
	Type     ChangeType `json:"type"`
}

// Changeset is the set of differences for a single post, with the partial
// update payload ready to send.
type Changeset struct {
	Changes []FieldChange
	payload map[string]any
}

// HasChanges reports whether the post needs a write at all.
func (c *Changeset) HasChanges() bool {
	return len(c.Changes) > 0
}

// Payload returns the partial update body. Only changed top-level fields
// appear; meta and taxonomies appear only when at least one of their entries
// changed.
func (c *Changeset) Payload() map[string]any {
	return c.payload
}

// Summary returns a short human-readable description of the changeset.
func (c *Changeset) Summary() string {
	if !c.HasChanges() {
		return "no changes"
	}
	paths := make([]string, len(c.Changes))
	for i, ch := range c.Changes {
		paths[i] = ch.Path
	}
	return fmt.Sprintf("%d field(s) changed: %s", len(c.Changes), strings.Join(paths, ", "))
}

// Diff compares the desired post against the existing one and returns the
// changeset. Desired fields left at their zero value are not compared; the
// caller only ever asks for what it populated.
func Diff(desired, existing *wordpress.Post) *Changeset {
	cs := &Changeset{payload: map[string]any{}}

	diffScalar(cs, "title", existing.Title, desired.Title)
	diffScalar(cs, "content", existing.Content, desired.Content)
	diffScalar(cs, "status", existing.Status, desired.Status)
	if desired.FeaturedMedia != 0 && desired.FeaturedMedia != existing.FeaturedMedia {
		cs.record("featured_media", existing.FeaturedMedia, desired.FeaturedMedia)
		cs.payload["featured_media"] = desired.FeaturedMedia
	}

	diffMeta(cs, desired.Meta, existing.Meta)
	diffTaxonomies(cs, desired.Taxonomies, existing.Taxonomies)

	return cs
}

func diffScalar(cs *Changeset, path, existing, desired string) {
	if desired == "" || desired == existing {
		return
	}
	cs.record(path, existing, desired)
	cs.payload[path] = desired
}

// diffMeta compares desired meta keys against existing values. Existing
// values arrive wrapped in single-element arrays; they are unwrapped and
// both sides rendered to strings before comparison, since the source is
// tabular and everything round-trips through text anyway.
func diffMeta(cs *Changeset, desired, existing map[string]any) {
	if len(desired) == 0 {
		return
	}
	changed := map[string]any{}
	for _, key := range sortedKeys(desired) {
		want := normalizeMeta(desired[key])
		have := normalizeMeta(existing[key])
		if want == have {
			continue
		}
		changeType := ChangeTypeModified
		if have == "" {
			changeType = ChangeTypeAdded
		}
		cs.Changes = append(cs.Changes, FieldChange{
			Path:     "meta." + key,
			OldValue: have,
			NewValue: want,
			Type:     changeType,
		})
		changed[key] = desired[key]
	}
	if len(changed) > 0 {
		cs.payload["meta"] = changed
	}
}

// diffTaxonomies compares term ID assignments per taxonomy as unordered
// sets. Only taxonomies present in the desired state are considered.
func diffTaxonomies(cs *Changeset, desired, existing map[string][]int) {
	if len(desired) == 0 {
		return
	}
	changed := map[string][]int{}
	keys := make([]string, 0, len(desired))
	for k := range desired {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, taxonomy := range keys {
		want := desired[taxonomy]
		have := existing[taxonomy]
		if sameIDSet(want, have) {
			continue
		}
		cs.Changes = append(cs.Changes, FieldChange{
			Path:     "taxonomies." + taxonomy,
			OldValue: have,
			NewValue: want,
			Type:     ChangeTypeModified,
		})
		changed[taxonomy] = want
	}
	if len(changed) > 0 {
		cs.payload["taxonomies"] = changed
	}
}

func (c *Changeset) record(path string, oldValue, newValue any) {
	c.Changes = append(c.Changes, FieldChange{
		Path:     path,
		OldValue: oldValue,
		NewValue: newValue,
		Type:     ChangeTypeModified,
	})
}

// normalizeMeta unwraps a single-element array and renders the value as a
// string. Nil and the empty string normalize identically.
func normalizeMeta(v any) string {
	if v == nil {
		return ""
	}
	switch vv := v.(type) {
	case []any:
		if len(vv) == 0 {
			return ""
		}
		if len(vv) == 1 {
			return normalizeMeta(vv[0])
		}
		parts := make([]string, len(vv))
		for i, item := range vv {
			parts[i] = normalizeMeta(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(vv, ",")
	case string:
		return vv
	case float64:
		// JSON numbers decode as float64. Render integers without a
		// trailing fraction so "42000" compares equal to 42000.
		if vv == float64(int64(vv)) {
			return fmt.Sprintf("%d", int64(vv))
		}
		return fmt.Sprintf("%g", vv)
	default:
		return fmt.Sprint(vv)
	}
}

// sameIDSet reports whether two ID slices contain the same set of values,
// ignoring order and duplicates.
func sameIDSet(a, b []int) bool {
	as := map[int]struct{}{}
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := map[int]struct{}{}
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
