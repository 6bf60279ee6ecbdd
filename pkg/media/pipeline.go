package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/motorlot/lotsync/internal/utils/slug"
	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/inventory"
	"github.com/motorlot/lotsync/pkg/logging"
)

// Uploader is the slice of the backend client the pipeline needs.
type Uploader interface {
	UploadMedia(ctx context.Context, filename, contentType string, data []byte) (int, error)
	SetMediaAlt(ctx context.Context, id int, alt string) error
}

// defaultUploadPause spaces uploads out so a large gallery does not hammer
// the backend's media endpoint.
const defaultUploadPause = 1 * time.Second

// maxImageBytes caps a single download. Photo hosts occasionally serve an
// error page or an unresized original; neither belongs in an upload.
const maxImageBytes = 32 << 20

// Pipeline fetches, optimizes, and uploads photos for a record.
type Pipeline struct {
	uploader  Uploader
	optimizer Optimizer
	fetcher   *http.Client
	pause     time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithOptimizer replaces the passthrough optimizer.
func WithOptimizer(o Optimizer) PipelineOption {
	return func(p *Pipeline) { p.optimizer = o }
}

// WithFetcher replaces the HTTP client used to download source images.
func WithFetcher(c *http.Client) PipelineOption {
	return func(p *Pipeline) { p.fetcher = c }
}

// WithUploadPause sets the delay before each upload. Zero disables pausing.
func WithUploadPause(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.pause = d }
}

// NewPipeline builds a Pipeline around an uploader.
func NewPipeline(uploader Uploader, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		uploader:  uploader,
		optimizer: Passthrough{},
		fetcher:   &http.Client{Timeout: 2 * time.Minute},
		pause:     defaultUploadPause,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnsureFeatured returns the attachment ID for the record's featured image,
// uploading the official photo when no ID is cached yet. A record with no
// official photo yields 0; gallery photos never stand in for it.
func (p *Pipeline) EnsureFeatured(ctx context.Context, rec *inventory.Record) (int, error) {
	if rec.FeaturedImageID != 0 {
		return rec.FeaturedImageID, nil
	}
	if strings.TrimSpace(rec.FotoOficial) == "" {
		return 0, nil
	}

	id, err := p.processImage(ctx, rec.FotoOficial, rec.Title(), altText(rec, "Oficial"), 0)
	if err != nil {
		return 0, err
	}
	rec.FeaturedImageID = id
	return id, nil
}

// EnsureGallery returns the attachment IDs for one of the record's photo
// galleries. Cached IDs are reused when they cover every URL. Otherwise each
// uncovered URL is uploaded; a failed image is logged and skipped so one bad
// photo never blocks the rest of the gallery.
func (p *Pipeline) EnsureGallery(ctx context.Context, rec *inventory.Record, gallery inventory.Gallery) ([]int, error) {
	urls := rec.GalleryURLs(gallery)
	cached := rec.GalleryIDs(gallery)
	if len(urls) == 0 {
		return nil, nil
	}
	if len(cached) >= len(urls) {
		return cached[:len(urls)], nil
	}

	alt := altText(rec, galleryQualifier(gallery))
	ids := make([]int, 0, len(urls))
	ids = append(ids, cached...)
	for i := len(cached); i < len(urls); i++ {
		if err := ctx.Err(); err != nil {
			return ids, errors.ErrCanceled
		}
		id, err := p.processImage(ctx, urls[i], rec.Title(), alt, i+1)
		if err != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("url", urls[i]).
				Str("gallery", string(gallery)).
				Msg("skipping image that failed to upload")
			continue
		}
		ids = append(ids, id)
	}
	rec.SetGalleryIDs(gallery, ids)
	return ids, nil
}

// processImage runs one URL through fetch, optimize, pause, upload, alt.
// Alt-text failure is tolerated; the attachment already exists at that point.
func (p *Pipeline) processImage(ctx context.Context, imageURL, title, alt string, ordinal int) (int, error) {
	data, contentType, err := p.fetch(ctx, imageURL)
	if err != nil {
		return 0, err
	}

	data, contentType, err = p.optimizer.Optimize(ctx, data, contentType)
	if err != nil {
		return 0, fmt.Errorf("optimizing %s: %w", imageURL, err)
	}

	if p.pause > 0 {
		select {
		case <-time.After(p.pause):
		case <-ctx.Done():
			return 0, errors.ErrCanceled
		}
	}

	filename := buildFilename(title, imageURL, ordinal)
	id, err := p.uploader.UploadMedia(ctx, filename, contentType, data)
	if err != nil {
		return 0, err
	}

	if err := p.uploader.SetMediaAlt(ctx, id, alt); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("media_id", id).Msg("failed to set alt text")
	}
	return id, nil
}

// altText labels an attachment by make and model plus where the photo came
// from, e.g. "Nissan Versa Exterior".
func altText(rec *inventory.Record, qualifier string) string {
	base := strings.TrimSpace(rec.AutoMarca + " " + rec.AutoSubmarcaVersion)
	if base == "" {
		base = rec.Title()
	}
	return strings.TrimSpace(base + " " + qualifier)
}

func galleryQualifier(g inventory.Gallery) string {
	if g == inventory.GalleryInterior {
		return "Interior"
	}
	return "Exterior"
}

func (p *Pipeline) fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", errors.WrapIO("fetch", imageURL, err)
	}
	resp, err := p.fetcher.Do(req)
	if err != nil {
		return nil, "", errors.WrapIO("fetch", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.NewRequestError(http.MethodGet, imageURL, resp.StatusCode, "image fetch failed")
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", errors.WrapIO("fetch", imageURL, err)
	}
	if len(data) == 0 {
		return nil, "", errors.NewIOError("fetch", imageURL, fmt.Errorf("empty image body"))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromURL(imageURL)
	}
	return data, contentType, nil
}

// buildFilename derives a stable upload name from the vehicle title, the
// gallery ordinal, and the source extension. Ordinal 0 is the featured image.
func buildFilename(title, imageURL string, ordinal int) string {
	base := strings.ToLower(slug.Filename(title))
	if base == "" {
		base = "vehiculo"
	}
	ext := strings.ToLower(path.Ext(strippedPath(imageURL)))
	if ext == "" {
		ext = ".jpg"
	}
	if ordinal == 0 {
		return base + ext
	}
	return fmt.Sprintf("%s_%d%s", base, ordinal, ext)
}

func strippedPath(imageURL string) string {
	if i := strings.IndexAny(imageURL, "?#"); i >= 0 {
		return imageURL[:i]
	}
	return imageURL
}

func contentTypeFromURL(imageURL string) string {
	switch strings.ToLower(path.Ext(strippedPath(imageURL))) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
