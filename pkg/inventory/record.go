// Package inventory models the tabular inventory source: one record per
// physical vehicle, keyed by purchase order. The source of truth for
// descriptive attributes is the record; the remote content post is a derived
// projection. Cached identifiers (post ID, media IDs, term IDs) are advisory
// write-back optimizations, re-derived from the backend when absent.
package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/motorlot/lotsync/pkg/errors"
)

// Status is the lifecycle status of an inventory record.
type Status string

// Lifecycle statuses that drive synchronization.
const (
	// StatusComprado marks a purchased vehicle that must be published.
	StatusComprado Status = "Comprado"

	// StatusHistorico marks a retired vehicle whose post is trashed.
	StatusHistorico Status = "Historico"
)

// Gallery identifies one of the photo galleries carried on a record.
type Gallery string

// Galleries carried on a record.
const (
	GalleryExterior Gallery = "exterior"
	GalleryInterior Gallery = "interior"
)

// Record is one row of the inventory source.
type Record struct {
	// Row is the 1-based row number in the source, used for write-backs
	// and checkpoints. Row 1 is the header.
	Row int

	// Estatus is the status/result message column written back after
	// each sync attempt.
	Estatus string

	// Natural key and lifecycle.
	OrdenCompra string
	OrdenStatus Status
	OrdenID     string
	OrdenFolio  string

	// Descriptive attributes. Values stay as source strings: they are
	// string-coerced into post meta anyway.
	AutoMarca           string
	AutoSubmarcaVersion string
	AutoAno             string
	AutoPrecio          string
	AutoKilometraje     string
	AutoMotor           string
	AutoCombustible     string
	AutoTransmision     string
	AutoCilindros       string
	AutoGarantia        string
	ColorExterior       string
	ColorInterior       string
	DetallesEsteticos   string
	NoSiniestros        string
	MontoSeparacion     string
	EngancheMin         string
	Mensualidad         string
	Plazo               string
	Proximamente        string
	Separado            string
	Separable           string
	Sucursal            string
	SucursalID          string
	ClasificacionID     string
	Keyword             string
	SupportKeywords     string
	MetaDescripcion     string

	// Photo URLs. Galleries are comma-separated lists in the source.
	FotoOficial   string
	Foto360       string
	FotosExterior []string
	FotosInterior []string

	// Sync bookkeeping.
	UltimaModificacion time.Time
	LastSyncTime       time.Time

	// Cached remote identifiers written back by previous runs.
	PostID           int
	MakeID           int
	ModelID          int
	FeaturedImageID  int
	FotosExteriorIDs []int
	FotosInteriorIDs []int
}

// Validate checks that the record carries a usable natural key.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.OrdenCompra) == "" {
		return errors.NewValidationError("ordencompra", r.OrdenCompra, "cannot be empty")
	}
	return nil
}

// NeedsSync reports whether the record is eligible for processing: it has
// been modified since the last synchronization AND it is either purchased,
// or retired with a post already created. A record never synced compares
// against the zero time, so any modification timestamp qualifies.
func (r *Record) NeedsSync() bool {
	if !r.UltimaModificacion.After(r.LastSyncTime) {
		return false
	}
	switch r.OrdenStatus {
	case StatusComprado:
		return true
	case StatusHistorico:
		return r.PostID != 0
	default:
		return false
	}
}

// Title is the post title: make, model and year.
func (r *Record) Title() string {
	return fmt.Sprintf("%s %s %s", r.AutoMarca, r.AutoSubmarcaVersion, r.AutoAno)
}

// MetaTitle is the "titulo" meta field: make and model without the year.
func (r *Record) MetaTitle() string {
	return fmt.Sprintf("%s %s", r.AutoMarca, r.AutoSubmarcaVersion)
}

// Content is the post body: the meta description, or a generated fallback.
func (r *Record) Content() string {
	if r.MetaDescripcion != "" {
		return r.MetaDescripcion
	}
	return "Detalles para " + r.Title()
}

// GalleryURLs returns the photo URLs for the given gallery.
func (r *Record) GalleryURLs(g Gallery) []string {
	if g == GalleryInterior {
		return r.FotosInterior
	}
	return r.FotosExterior
}

// GalleryIDs returns the cached media IDs for the given gallery.
func (r *Record) GalleryIDs(g Gallery) []int {
	if g == GalleryInterior {
		return r.FotosInteriorIDs
	}
	return r.FotosExteriorIDs
}

// SetGalleryIDs stores media IDs for the given gallery on the record.
func (r *Record) SetGalleryIDs(g Gallery, ids []int) {
	if g == GalleryInterior {
		r.FotosInteriorIDs = ids
		return
	}
	r.FotosExteriorIDs = ids
}
