package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/repository/storage"
	"github.com/rs/zerolog"
)

const filenameTimeLayout = "20060102_150405"

// Document is what an Encoder writes: the summary plus presentation metadata
type Document struct {
	Organization string
	Title        string
	GeneratedAt  time.Time
	Summary      *domain.Summary
}

// Placeholder reports whether the document should render as an insufficient-data notice
func (d *Document) Placeholder() bool {
	return d.Summary.Empty
}

// Encoder writes a Document in one output format
type Encoder interface {
	Format() domain.ReportFormat
	ContentType() string
	Encode(w io.Writer, doc *Document) error
}

// NewEncoder returns the encoder for a configured format
func NewEncoder(format domain.ReportFormat) (Encoder, error) {
	switch format {
	case domain.ReportFormatJSON:
		return &JSONEncoder{}, nil
	case domain.ReportFormatPDF:
		return &PDFEncoder{}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, format)
}

// Options configures a Renderer
type Options struct {
	Organization   string
	FilenameSuffix bool
}

// Renderer turns summaries into stored artifacts
type Renderer struct {
	encoder Encoder
	store   storage.ArtifactStore
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRenderer creates a Renderer writing through the given encoder and store
func NewRenderer(encoder Encoder, store storage.ArtifactStore, opts Options, logger zerolog.Logger) *Renderer {
	return &Renderer{
		encoder: encoder,
		store:   store,
		opts:    opts,
		logger:  logger.With().Str("component", "renderer").Logger(),
		now:     time.Now,
	}
}

// SetClock overrides the clock used for generated-at stamps and file names
func (r *Renderer) SetClock(now func() time.Time) {
	r.now = now
}

// Format returns the artifact format this renderer produces
func (r *Renderer) Format() domain.ReportFormat {
	return r.encoder.Format()
}

// Filename builds the artifact name: <kind>_<YYYYMMDD_HHMMSS>[_<suffix>].<ext>,
// with "_empty" after the kind for placeholder artifacts.
func (r *Renderer) Filename(summary *domain.Summary, at time.Time) string {
	var b strings.Builder
	b.WriteString(string(summary.Kind))
	if summary.Empty {
		b.WriteString("_empty")
	}
	b.WriteString("_")
	b.WriteString(at.Format(filenameTimeLayout))
	if r.opts.FilenameSuffix {
		b.WriteString("_")
		b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	b.WriteString(".")
	b.WriteString(string(r.encoder.Format()))
	return b.String()
}

// Render encodes the summary and persists it. Storage failures wrap domain.ErrArtifactWrite.
func (r *Renderer) Render(ctx context.Context, summary *domain.Summary) (*domain.Artifact, error) {
	at := r.now()
	doc := &Document{
		Organization: r.opts.Organization,
		Title:        summary.Kind.Title(),
		GeneratedAt:  at,
		Summary:      summary,
	}

	var buf bytes.Buffer
	if err := r.encoder.Encode(&buf, doc); err != nil {
		return nil, fmt.Errorf("encode %s report: %w", r.encoder.Format(), err)
	}

	name := r.Filename(summary, at)
	size := int64(buf.Len())
	location, err := r.store.Put(ctx, name, &buf, size, r.encoder.ContentType())
	if err != nil {
		r.logger.Error().Err(err).Str("file_name", name).Msg("Failed to store report artifact")
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactWrite, err)
	}

	r.logger.Info().
		Str("file_name", name).
		Int64("size", size).
		Bool("placeholder", summary.Empty).
		Msg("Report artifact stored")

	return &domain.Artifact{
		Filename:    name,
		Filepath:    location,
		Size:        size,
		Format:      r.encoder.Format(),
		ContentType: r.encoder.ContentType(),
		Placeholder: summary.Empty,
	}, nil
}
