package layout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nexstacksg/property-stewards-app-sub001/checklist"
	"github.com/nexstacksg/property-stewards-app-sub001/config"
	"github.com/nexstacksg/property-stewards-app-sub001/media"
	"github.com/nexstacksg/property-stewards-app-sub001/observability"
	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

// Prefetcher resolves a batch of media references ahead of layout.
// media.Resolver implements it; the engine uses it when available so the
// synchronous layout phase only reads a warm cache.
type Prefetcher interface {
	Prefetch(ctx context.Context, refs []checklist.MediaRef) error
}

// Engine renders checklist records against an injected surface.
type Engine struct {
	prof config.Profile
	log  observability.Logger
	res  ImageResolver
}

// Option configures the engine.
type Option func(*Engine)

// WithProfile replaces the default report profile.
func WithProfile(p config.Profile) Option {
	return func(e *Engine) { e.prof = p }
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithResolver sets the image resolver. Without one, every photo tile
// renders as the unavailable placeholder.
func WithResolver(r ImageResolver) Option {
	return func(e *Engine) { e.res = r }
}

// New creates an engine with the standard profile.
func New(opts ...Option) *Engine {
	e := &Engine{prof: config.Default(), log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result summarizes one render.
type Result struct {
	RenderID string
	Pages    int
	Rows     int
}

// Render lays the record out onto the surface. The only returned errors
// are fatal preconditions: an unusable surface or a broken profile.
// Everything else degrades locally and the report renders to completion.
func (e *Engine) Render(ctx context.Context, sfc surface.Surface, rec *checklist.Record, opts Options) (*Result, error) {
	if sfc.PageWidth() <= 0 || sfc.PageHeight() <= 0 {
		return nil, fmt.Errorf("layout: unusable drawing surface: %g x %g page",
			sfc.PageWidth(), sfc.PageHeight())
	}
	if err := e.prof.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if sfc.PageWidth() <= 2*e.prof.MarginX {
		return nil, fmt.Errorf("layout: margins leave no content width on a %g-wide page", sfc.PageWidth())
	}

	renderID := uuid.NewString()
	log := e.log.With(observability.String("render", renderID))

	items := rec.Items
	if opts.FilterByScopeID != "" {
		items = filterByScope(items, opts.FilterByScopeID)
	}

	if pf, ok := e.res.(Prefetcher); ok && opts.IncludeMedia {
		if err := pf.Prefetch(ctx, media.CollectRefs(items)); err != nil {
			log.Warn("some media failed to prefetch", observability.Error("err", err))
		}
	}

	rend := NewRenderer(ctx, sfc, e.res, e.prof, log)
	pag := NewPaginator(sfc, rend, e.prof, log)
	if opts.StartOnNewPage {
		pag.breakPage()
	}

	e.drawHeading(sfc, pag, rec, opts)

	rows := BuildRows(items, e.prof, opts)
	pag.Run(rows)

	log.Info("report rendered",
		observability.Int("items", len(items)),
		observability.Int("rows", len(rows)),
		observability.Int("pages", pag.pages))
	return &Result{RenderID: renderID, Pages: pag.pages, Rows: len(rows)}, nil
}

// drawHeading places the optional heading and meta lines above the
// first header row.
func (e *Engine) drawHeading(sfc surface.Surface, pag *Paginator, rec *checklist.Record, opts Options) {
	cw := sfc.PageWidth() - 2*e.prof.MarginX
	if opts.Heading != "" {
		sfc.Text(opts.Heading, e.prof.MarginX, pag.y, surface.TextOptions{
			FontSize: e.prof.HeadingFontSize,
			Color:    colorText,
			Width:    cw,
			Align:    surface.AlignLeft,
		})
		pag.y += sfc.HeightOfString(opts.Heading, cw, e.prof.HeadingFontSize) + e.prof.CellPadding
	}
	if !opts.IncludeMeta {
		return
	}
	lines := metaLines(rec)
	for _, line := range lines {
		sfc.Text(line, e.prof.MarginX, pag.y, surface.TextOptions{
			FontSize: e.prof.BodyFontSize,
			Color:    colorText,
			Width:    cw,
			Align:    surface.AlignLeft,
		})
		pag.y += sfc.HeightOfString(line, cw, e.prof.BodyFontSize)
	}
	if len(lines) > 0 {
		pag.y += e.prof.CellPadding
	}
}

func metaLines(rec *checklist.Record) []string {
	var lines []string
	if rec.PropertyAddress != "" {
		lines = append(lines, "Property: "+rec.PropertyAddress)
	}
	if rec.ContractRef != "" {
		lines = append(lines, "Contract: "+rec.ContractRef)
	}
	if rec.InspectorName != "" {
		lines = append(lines, "Inspector: "+rec.InspectorName)
	}
	if !rec.InspectedAt.IsZero() {
		lines = append(lines, "Inspected: "+rec.InspectedAt.Format(remarkDateLayout))
	}
	return lines
}

func filterByScope(items []checklist.Item, scopeID string) []checklist.Item {
	var out []checklist.Item
	for _, item := range items {
		if item.ID == scopeID {
			out = append(out, item)
		}
	}
	return out
}
