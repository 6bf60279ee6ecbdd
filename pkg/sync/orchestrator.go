package sync

import (
	"context"
	"strconv"
	"strings"

	"github.com/motorlot/lotsync/pkg/differ"
	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/logging"
	"github.com/motorlot/lotsync/pkg/schema"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// Orchestrator runs the per-record upsert state machine. Each record runs to
// completion or failure before the next begins; a failure is captured in the
// outcome, never propagated, so one bad record cannot stop the batch.
type Orchestrator struct {
	api      API
	media    MediaPipeline
	profile  *schema.Profile
	resolver *Resolver
	linker   *Linker
}

// NewOrchestrator wires the engine around an API client and media pipeline.
func NewOrchestrator(api API, media MediaPipeline, profile *schema.Profile) *Orchestrator {
	return &Orchestrator{
		api:      api,
		media:    media,
		profile:  profile,
		resolver: NewResolver(api),
		linker:   NewLinker(api, profile),
	}
}

// Process runs one record through the state machine and returns its outcome.
// Remote progress already committed when an error occurs is not rolled back;
// idempotent resolution makes the retry on the next run safe.
func (o *Orchestrator) Process(ctx context.Context, rec *inventory.Record) *Outcome {
	out := &Outcome{Row: rec.Row, OrdenCompra: rec.OrdenCompra}
	ctx = logging.WithRecord(ctx, rec.OrdenCompra)

	if err := rec.Validate(); err != nil {
		return out.fail(err)
	}

	switch {
	case rec.OrdenStatus == inventory.StatusComprado:
		o.publish(ctx, rec, out)
	case rec.OrdenStatus == inventory.StatusHistorico && rec.PostID != 0:
		o.retire(ctx, rec, out)
	default:
		out.Action = ActionSkipped
		logging.Ctx(ctx).Debug().
			Str("status", string(rec.OrdenStatus)).
			Msg("record status requires no remote work")
	}
	return out
}

// retire trashes the post of a vehicle that left the inventory. Nothing
// else about the post is touched.
func (o *Orchestrator) retire(ctx context.Context, rec *inventory.Record, out *Outcome) {
	if err := o.api.TrashPost(ctx, rec.PostID); err != nil {
		out.fail(err)
		return
	}
	out.Action = ActionTrashed
	out.PostID = rec.PostID
	logging.Ctx(ctx).Info().Int("post_id", rec.PostID).Msg("post moved to trash")
}

// publish creates or updates the post for a purchased vehicle, then
// re-asserts its relation edges.
func (o *Orchestrator) publish(ctx context.Context, rec *inventory.Record, out *Outcome) {
	log := logging.Ctx(ctx)

	postID, err := o.api.FindPostByOrdenCompra(ctx, rec.OrdenCompra)
	if err != nil {
		out.fail(err)
		return
	}
	if postID == 0 {
		postID = rec.PostID
	}

	makeID, modelID, err := o.resolveRequiredTerms(ctx, rec)
	if err != nil {
		out.fail(err)
		return
	}
	sucursalID := o.resolveSucursal(ctx, rec)
	clasificacionID := o.resolveClasificacion(ctx, rec)

	if err := o.ensureMedia(ctx, rec); err != nil {
		out.fail(err)
		return
	}

	desired := o.buildDesired(rec, makeID, modelID, sucursalID, clasificacionID)

	if postID == 0 {
		newID, err := o.api.CreatePost(ctx, desired)
		if err != nil {
			out.fail(err)
			return
		}
		postID = newID
		out.Action = ActionCreated
		log.Info().Int("post_id", postID).Msg("post created")
	} else {
		existing, err := o.api.GetPost(ctx, postID)
		if err != nil {
			out.fail(err)
			return
		}
		changes := differ.Diff(desired, existing)
		if changes.HasChanges() {
			if err := o.api.UpdatePost(ctx, postID, changes.Payload()); err != nil {
				out.fail(err)
				return
			}
			out.Action = ActionUpdated
			for _, ch := range changes.Changes {
				out.ChangedFields = append(out.ChangedFields, ch.Path)
			}
			log.Info().Int("post_id", postID).Str("changes", changes.Summary()).Msg("post updated")
		} else {
			out.Action = ActionNoOp
			log.Debug().Int("post_id", postID).Msg("post already up to date")
		}
	}

	out.PostID = postID
	rec.PostID = postID

	// Relation state is not covered by the field diff, so edges are
	// re-asserted even when the post itself was unchanged.
	o.linker.Link(ctx, postID, makeID, modelID, sucursalID)
}

// resolveRequiredTerms resolves the make and model terms. The model is a
// child of the make. Either failing is fatal for the record.
func (o *Orchestrator) resolveRequiredTerms(ctx context.Context, rec *inventory.Record) (makeID, modelID int, err error) {
	makeID = rec.MakeID
	if makeID == 0 {
		makeID, err = o.resolver.Resolve(ctx, schema.TaxonomyMakes, rec.AutoMarca, 0)
		if err != nil {
			return 0, 0, err
		}
	}

	modelID = rec.ModelID
	if modelID == 0 {
		modelID, err = o.resolver.Resolve(ctx, schema.TaxonomyModels, rec.AutoSubmarcaVersion, makeID)
		if err != nil {
			return 0, 0, err
		}
	}

	rec.MakeID = makeID
	rec.ModelID = modelID
	return makeID, modelID, nil
}

// resolveSucursal resolves the branch term. The source may carry either a
// numeric term ID or a branch name.
func (o *Orchestrator) resolveSucursal(ctx context.Context, rec *inventory.Record) int {
	if id := numericID(rec.SucursalID); id != 0 {
		return id
	}
	return o.resolver.ResolveOptional(ctx, schema.TaxonomySucursal, rec.Sucursal, 0)
}

// resolveClasificacion resolves the classification term, same ID-or-name
// convention as the branch.
func (o *Orchestrator) resolveClasificacion(ctx context.Context, rec *inventory.Record) int {
	if id := numericID(rec.ClasificacionID); id != 0 {
		return id
	}
	return o.resolver.ResolveOptional(ctx, schema.TaxonomyClasificacion, rec.ClasificacionID, 0)
}

// ensureMedia populates the record's featured image and gallery attachment
// IDs, uploading what is not cached yet.
func (o *Orchestrator) ensureMedia(ctx context.Context, rec *inventory.Record) error {
	if o.media == nil {
		return nil
	}
	if _, err := o.media.EnsureFeatured(ctx, rec); err != nil {
		return err
	}
	if _, err := o.media.EnsureGallery(ctx, rec, inventory.GalleryExterior); err != nil {
		return err
	}
	if _, err := o.media.EnsureGallery(ctx, rec, inventory.GalleryInterior); err != nil {
		return err
	}
	return nil
}

// buildDesired renders the record into the post payload the backend should
// hold.
func (o *Orchestrator) buildDesired(rec *inventory.Record, makeID, modelID, sucursalID, clasificacionID int) *wordpress.Post {
	meta := make(map[string]any, len(o.profile.MetaKeys))
	for _, key := range o.profile.MetaKeys {
		meta[key] = metaValue(rec, key)
	}

	taxonomies := map[string][]int{
		schema.TaxonomyMakes:  {makeID},
		schema.TaxonomyModels: {modelID},
	}
	if o.profile.HasTaxonomy(schema.TaxonomySucursal) {
		taxonomies[schema.TaxonomySucursal] = optionalTerm(sucursalID)
	}
	if o.profile.HasTaxonomy(schema.TaxonomyClasificacion) {
		taxonomies[schema.TaxonomyClasificacion] = optionalTerm(clasificacionID)
	}

	return &wordpress.Post{
		Title:         rec.Title(),
		Content:       rec.Content(),
		Status:        wordpress.StatusPublish,
		FeaturedMedia: rec.FeaturedImageID,
		Meta:          meta,
		Taxonomies:    taxonomies,
	}
}

// metaValue maps a meta key to its string-coerced record value.
func metaValue(rec *inventory.Record, key string) string {
	switch key {
	case "ordenstatus":
		return string(rec.OrdenStatus)
	case "ordencompra":
		return rec.OrdenCompra
	case "ordenid":
		return rec.OrdenID
	case "autoano":
		return rec.AutoAno
	case "autoprecio":
		return rec.AutoPrecio
	case "autokilometraje":
		return rec.AutoKilometraje
	case "automotor":
		return rec.AutoMotor
	case "autocombustible":
		return rec.AutoCombustible
	case "autotransmision":
		return rec.AutoTransmision
	case "autocilindros":
		return rec.AutoCilindros
	case "color_exterior":
		return rec.ColorExterior
	case "color_interior":
		return rec.ColorInterior
	case "autogarantia":
		return rec.AutoGarantia
	case "detalles_esteticos":
		return rec.DetallesEsteticos
	case "monto_separacion":
		return rec.MontoSeparacion
	case "enganche":
		return rec.EngancheMin
	case "plazo":
		return rec.Plazo
	case "nosiniestros":
		return rec.NoSiniestros
	case "mensualidad":
		return rec.Mensualidad
	case "fotooficial":
		return rec.FotoOficial
	case "proximamente":
		return rec.Proximamente
	case "separado":
		return rec.Separado
	case "titulo":
		return rec.MetaTitle()
	case "fotos_exterior":
		return inventory.JoinIDs(rec.FotosExteriorIDs)
	case "fotos_interior":
		return inventory.JoinIDs(rec.FotosInteriorIDs)
	default:
		return ""
	}
}

// optionalTerm renders an optional taxonomy assignment. Zero means the record
// carries no term; the empty list is still sent so a stale assignment on the
// post gets cleared rather than silently kept.
func optionalTerm(id int) []int {
	if id == 0 {
		return []int{}
	}
	return []int{id}
}

func numericID(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func (o *Outcome) fail(err error) *Outcome {
	o.Action = ActionFailed
	o.Err = err
	return o
}
