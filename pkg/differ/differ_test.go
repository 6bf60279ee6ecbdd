package differ_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/lotsync/pkg/differ"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

func desiredPost() *wordpress.Post {
	return &wordpress.Post{
		Title:         "Nissan Versa 2021",
		Content:       "Sedán compacto, único dueño.",
		Status:        wordpress.StatusPublish,
		FeaturedMedia: 900,
		Meta: map[string]any{
			"precio":      "185000",
			"kilometraje": "42000",
			"ordencompra": "PO-2024-117",
		},
		Taxonomies: map[string][]int{
			"makes":   {12},
			"modelos": {44},
		},
	}
}

// existingPost mirrors desiredPost as the backend would return it: meta
// values in single-element arrays, taxonomy IDs in arbitrary order.
func existingPost() *wordpress.Post {
	return &wordpress.Post{
		ID:            431,
		Title:         "Nissan Versa 2021",
		Content:       "Sedán compacto, único dueño.",
		Status:        wordpress.StatusPublish,
		FeaturedMedia: 900,
		Meta: map[string]any{
			"precio":      []any{"185000"},
			"kilometraje": []any{float64(42000)},
			"ordencompra": []any{"PO-2024-117"},
		},
		Taxonomies: map[string][]int{
			"makes":   {12},
			"modelos": {44},
		},
	}
}

func TestDiffIdenticalStatesIsEmpty(t *testing.T) {
	cs := differ.Diff(desiredPost(), existingPost())
	assert.False(t, cs.HasChanges())
	assert.Empty(t, cs.Payload())
	assert.Equal(t, "no changes", cs.Summary())
}

func TestDiffScalarFields(t *testing.T) {
	existing := existingPost()
	existing.Title = "Nissan Versa"
	existing.Status = "draft"

	cs := differ.Diff(desiredPost(), existing)
	require.True(t, cs.HasChanges())

	payload := cs.Payload()
	assert.Equal(t, "Nissan Versa 2021", payload["title"])
	assert.Equal(t, "publish", payload["status"])
	assert.NotContains(t, payload, "content")
	assert.NotContains(t, payload, "featured_media")
	assert.NotContains(t, payload, "meta")
	assert.NotContains(t, payload, "taxonomies")
}

func TestDiffMetaUnwrapsSingleElementArrays(t *testing.T) {
	existing := existingPost()
	existing.Meta["precio"] = []any{"179000"}

	cs := differ.Diff(desiredPost(), existing)
	require.True(t, cs.HasChanges())
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, "meta.precio", cs.Changes[0].Path)
	assert.Equal(t, "179000", cs.Changes[0].OldValue)
	assert.Equal(t, "185000", cs.Changes[0].NewValue)

	// Only the changed key goes into the payload.
	meta, ok := cs.Payload()["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"precio": "185000"}, meta)
}

func TestDiffMetaNumericEquivalence(t *testing.T) {
	// 42000 decoded from JSON as float64 must compare equal to the
	// tabular string "42000".
	cs := differ.Diff(desiredPost(), existingPost())
	assert.False(t, cs.HasChanges())
}

func TestDiffMetaMissingKeyIsAdded(t *testing.T) {
	existing := existingPost()
	delete(existing.Meta, "kilometraje")

	cs := differ.Diff(desiredPost(), existing)
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, "meta.kilometraje", cs.Changes[0].Path)
	assert.Equal(t, differ.ChangeTypeAdded, cs.Changes[0].Type)
}

func TestDiffTaxonomiesOrderIndependent(t *testing.T) {
	desired := desiredPost()
	desired.Taxonomies["makes"] = []int{12, 7}
	existing := existingPost()
	existing.Taxonomies["makes"] = []int{7, 12}

	cs := differ.Diff(desired, existing)
	assert.False(t, cs.HasChanges())
}

func TestDiffTaxonomiesChanged(t *testing.T) {
	existing := existingPost()
	existing.Taxonomies["modelos"] = []int{99}

	cs := differ.Diff(desiredPost(), existing)
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, "taxonomies.modelos", cs.Changes[0].Path)

	tax, ok := cs.Payload()["taxonomies"].(map[string][]int)
	require.True(t, ok)
	assert.Equal(t, map[string][]int{"modelos": {44}}, tax)
}

func TestDiffEmptyDesiredTaxonomyClearsExisting(t *testing.T) {
	// An empty desired assignment is an explicit "no terms": it must clear
	// whatever the backend still holds for that taxonomy.
	desired := &wordpress.Post{Taxonomies: map[string][]int{"sucursal": {}}}
	existing := &wordpress.Post{Taxonomies: map[string][]int{"sucursal": {80}}}

	cs := differ.Diff(desired, existing)
	require.True(t, cs.HasChanges())
	tax, ok := cs.Payload()["taxonomies"].(map[string][]int)
	require.True(t, ok)
	assert.Equal(t, map[string][]int{"sucursal": {}}, tax)

	// Empty on both sides is not a change.
	cs = differ.Diff(desired, &wordpress.Post{})
	assert.False(t, cs.HasChanges())
}

func TestDiffZeroDesiredFieldsIgnored(t *testing.T) {
	// A desired post with unset optional fields never reports them as
	// changed, whatever the backend holds.
	desired := &wordpress.Post{Meta: map[string]any{"precio": "185000"}}
	existing := existingPost()

	cs := differ.Diff(desired, existing)
	assert.False(t, cs.HasChanges())
}

func TestDiffEmptyExistingProducesFullPayload(t *testing.T) {
	cs := differ.Diff(desiredPost(), &wordpress.Post{})
	require.True(t, cs.HasChanges())

	payload := cs.Payload()
	assert.Contains(t, payload, "title")
	assert.Contains(t, payload, "content")
	assert.Contains(t, payload, "status")
	assert.Contains(t, payload, "featured_media")
	assert.Contains(t, payload, "meta")
	assert.Contains(t, payload, "taxonomies")
}
