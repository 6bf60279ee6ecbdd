package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	assert.Equal(t, "autos", p.PostType)
	assert.True(t, p.HasTaxonomy(TaxonomyMakes))
	assert.True(t, p.HasTaxonomy(TaxonomyModels))
	assert.True(t, p.HasTaxonomy(TaxonomySucursal))
	assert.True(t, p.HasTaxonomy(TaxonomyClasificacion))
	assert.False(t, p.HasTaxonomy("colors"))
	assert.Contains(t, p.MetaKeys, "ordencompra")
	assert.Contains(t, p.MetaKeys, "autoprecio")
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("post_type: camiones\nrelations:\n  make_model: 7\n  sucursal_post: 9\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "camiones", p.PostType)
	assert.Equal(t, 7, p.Relations.MakeModel)
	assert.Equal(t, 9, p.Relations.SucursalPost)
	// Untouched fields keep defaults.
	assert.Contains(t, p.MetaKeys, "mensualidad")
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("post_type: \"\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
