// Package schema defines the site profile: the fixed vocabulary the sync
// engine speaks against the content backend. It enumerates the taxonomy
// names, the relation-type identifiers, and the meta-field keys carried on
// every vehicle post, so diffing and payload construction operate over known
// fields instead of arbitrary object keys.
package schema

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/motorlot/lotsync/pkg/errors"
)

// Well-known taxonomy names on the backend.
const (
	TaxonomyMakes         = "makes"
	TaxonomyModels        = "models"
	TaxonomySucursal      = "sucursal"
	TaxonomyClasificacion = "clasificacionid"
)

// Profile describes a target site: endpoints are configured elsewhere, the
// profile carries the content vocabulary.
type Profile struct {
	// PostType is the custom collection slug, e.g. "autos".
	PostType string `yaml:"post_type"`

	// Taxonomies lists the taxonomy names attached to the post type.
	Taxonomies []string `yaml:"taxonomies"`

	// Relations maps a logical edge name to its backend relation-type ID.
	Relations Relations `yaml:"relations"`

	// MetaKeys enumerates the meta fields written on every post, in the
	// order they are built into the payload.
	MetaKeys []string `yaml:"meta_keys"`
}

// Relations holds the relation-type identifiers for the edges the engine
// asserts.
type Relations struct {
	// MakeModel links a make term (parent) to a model term (child), and a
	// post (parent) to its make and model terms.
	MakeModel int `yaml:"make_model"`

	// SucursalPost links a branch term (parent) to a post (child).
	SucursalPost int `yaml:"sucursal_post"`
}

// Default returns the profile for the stock vehicle site.
func Default() *Profile {
	return &Profile{
		PostType: "autos",
		Taxonomies: []string{
			TaxonomyMakes,
			TaxonomyModels,
			TaxonomyClasificacion,
			TaxonomySucursal,
		},
		Relations: Relations{
			MakeModel:    3,
			SucursalPost: 52,
		},
		MetaKeys: []string{
			"ordenstatus",
			"ordencompra",
			"ordenid",
			"autoano",
			"autoprecio",
			"autokilometraje",
			"automotor",
			"autocombustible",
			"autotransmision",
			"autocilindros",
			"color_exterior",
			"color_interior",
			"autogarantia",
			"detalles_esteticos",
			"monto_separacion",
			"enganche",
			"plazo",
			"nosiniestros",
			"mensualidad",
			"fotooficial",
			"proximamente",
			"separado",
			"titulo",
			"fotos_exterior",
			"fotos_interior",
		},
	}
}

// Load reads a profile from a YAML file. Fields left empty in the file fall
// back to the default profile, so a site override only needs to state what
// differs.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	profile := Default()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks the profile for the invariants the engine relies on.
func (p *Profile) Validate() error {
	if p.PostType == "" {
		return errors.NewValidationError("post_type", p.PostType, "cannot be empty")
	}
	if p.Relations.MakeModel <= 0 {
		return errors.NewValidationError("relations.make_model", p.Relations.MakeModel, "must be a positive relation ID")
	}
	if p.Relations.SucursalPost <= 0 {
		return errors.NewValidationError("relations.sucursal_post", p.Relations.SucursalPost, "must be a positive relation ID")
	}
	if len(p.Taxonomies) == 0 {
		return errors.NewValidationError("taxonomies", nil, "at least one taxonomy is required")
	}
	return nil
}

// HasTaxonomy reports whether the profile declares the given taxonomy.
func (p *Profile) HasTaxonomy(name string) bool {
	for _, t := range p.Taxonomies {
		if t == name {
			return true
		}
	}
	return false
}
