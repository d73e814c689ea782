// Package surface defines the abstract drawing surface the report layout
// engine renders against. The engine produces nothing but calls on this
// interface; substituting a Recorder makes every layout decision
// observable without a document writer.
package surface

// Color represents an RGB color with optional alpha (0 disables alpha).
type Color struct {
	R, G, B float64
	A       float64
}

// Align controls horizontal text alignment within a wrap width.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// TextOptions configures text drawing.
type TextOptions struct {
	FontSize float64
	Color    Color
	Width    float64 // wrap width; 0 means no wrapping
	Align    Align
}

// RectOptions configures rectangle and circle drawing (defaults to stroke
// if neither fill nor stroke is set).
type RectOptions struct {
	FillColor    Color
	StrokeColor  Color
	LineWidth    float64
	CornerRadius float64
	Fill         bool
	Stroke       bool
}

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
}

// ImageOptions configures image placement. Width/Height give the target
// box; Fit preserves the source aspect ratio within it.
type ImageOptions struct {
	Width  float64
	Height float64
	Fit    bool
}

// Raster is a decoded, surface-compatible image buffer: 8-bit RGB pixel
// data with an optional 8-bit alpha plane.
type Raster struct {
	Width  int
	Height int
	Data   []byte
	Alpha  []byte
}

// Valid reports whether the buffer is internally consistent. Surfaces
// must reject invalid buffers instead of drawing garbage.
func (r *Raster) Valid() bool {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return false
	}
	if len(r.Data) != r.Width*r.Height*3 {
		return false
	}
	return len(r.Alpha) == 0 || len(r.Alpha) == r.Width*r.Height
}

// Surface is an append-only drawing target with a top-left origin; y
// grows downward. It is the engine's only output channel besides the
// measurement helpers.
type Surface interface {
	PageWidth() float64
	PageHeight() float64
	AddPage()

	Text(s string, x, y float64, opts TextOptions)
	Rect(x, y, width, height float64, opts RectOptions)
	Line(x1, y1, x2, y2 float64, opts LineOptions)
	Circle(cx, cy, radius float64, opts RectOptions)
	Image(img *Raster, x, y float64, opts ImageOptions) error

	// HeightOfString returns the wrapped height of s at the given width
	// and font size; WidthOfString the unwrapped advance width.
	HeightOfString(s string, width, fontSize float64) float64
	WidthOfString(s string, fontSize float64) float64
}
