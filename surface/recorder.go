package surface

import (
	"fmt"
	"strings"
)

// OpKind identifies a recorded draw operation.
type OpKind string

const (
	OpText    OpKind = "text"
	OpRect    OpKind = "rect"
	OpLine    OpKind = "line"
	OpCircle  OpKind = "circle"
	OpImage   OpKind = "image"
	OpAddPage OpKind = "addpage"
)

// Op is one recorded draw call.
type Op struct {
	Kind   OpKind
	Page   int
	X, Y   float64
	X2, Y2 float64
	W, H   float64
	Text   string
	Fill   bool
	Stroke bool
}

// Recorder is a headless Surface that records every draw call and
// answers measurement queries with fixed-advance metrics. It backs the
// engine's tests and the trace CLI.
type Recorder struct {
	pageW, pageH float64
	page         int
	Ops          []Op
}

// Fixed-advance approximation: average glyph width as a fraction of the
// font size, and the line height multiplier.
const (
	recorderAdvance    = 0.5
	recorderLineHeight = 1.2
)

// NewRecorder creates a recording surface with the given page size.
func NewRecorder(pageWidth, pageHeight float64) *Recorder {
	return &Recorder{pageW: pageWidth, pageH: pageHeight}
}

func (r *Recorder) PageWidth() float64  { return r.pageW }
func (r *Recorder) PageHeight() float64 { return r.pageH }

func (r *Recorder) AddPage() {
	r.page++
	r.Ops = append(r.Ops, Op{Kind: OpAddPage, Page: r.page})
}

func (r *Recorder) Text(s string, x, y float64, opts TextOptions) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Page: r.page, X: x, Y: y, W: opts.Width, Text: s})
}

func (r *Recorder) Rect(x, y, width, height float64, opts RectOptions) {
	r.Ops = append(r.Ops, Op{
		Kind: OpRect, Page: r.page,
		X: x, Y: y, W: width, H: height,
		Fill: opts.Fill, Stroke: opts.Stroke || (!opts.Fill && !opts.Stroke),
	})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, opts LineOptions) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Page: r.page, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: true})
}

func (r *Recorder) Circle(cx, cy, radius float64, opts RectOptions) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, Page: r.page, X: cx, Y: cy, W: radius, Fill: opts.Fill, Stroke: opts.Stroke})
}

func (r *Recorder) Image(img *Raster, x, y float64, opts ImageOptions) error {
	if !img.Valid() {
		return fmt.Errorf("image: invalid raster buffer")
	}
	r.Ops = append(r.Ops, Op{Kind: OpImage, Page: r.page, X: x, Y: y, W: opts.Width, H: opts.Height})
	return nil
}

func (r *Recorder) WidthOfString(s string, fontSize float64) float64 {
	if fontSize == 0 {
		fontSize = 12
	}
	return float64(len([]rune(s))) * fontSize * recorderAdvance
}

func (r *Recorder) HeightOfString(s string, width, fontSize float64) float64 {
	if s == "" {
		return 0
	}
	if fontSize == 0 {
		fontSize = 12
	}
	lineH := fontSize * recorderLineHeight
	if width <= 0 {
		return lineH * float64(strings.Count(s, "\n")+1)
	}
	lines := 0
	for _, para := range strings.Split(s, "\n") {
		lines += r.wrapLines(para, width, fontSize)
	}
	return float64(lines) * lineH
}

// wrapLines counts greedy word-wrapped lines; words wider than the wrap
// width break at glyph boundaries.
func (r *Recorder) wrapLines(s string, width, fontSize float64) int {
	words := strings.Fields(s)
	if len(words) == 0 {
		return 1
	}
	spaceW := fontSize * recorderAdvance
	lines := 1
	lineW := 0.0
	for _, word := range words {
		w := r.WidthOfString(word, fontSize)
		if w > width {
			perLine := int(width / (fontSize * recorderAdvance))
			if perLine < 1 {
				perLine = 1
			}
			chunks := (len([]rune(word)) + perLine - 1) / perLine
			if lineW > 0 {
				lines++
			}
			lines += chunks - 1
			lineW = w - float64(chunks-1)*float64(perLine)*fontSize*recorderAdvance
			continue
		}
		need := w
		if lineW > 0 {
			need += spaceW
		}
		if lineW+need > width {
			lines++
			lineW = w
		} else {
			lineW += need
		}
	}
	return lines
}

// PageCount returns the number of pages touched so far (1-based; a fresh
// recorder has one implicit page).
func (r *Recorder) PageCount() int { return r.page + 1 }

// OpsOnPage returns the ops recorded on the given zero-based page.
func (r *Recorder) OpsOnPage(page int) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Page == page && op.Kind != OpAddPage {
			out = append(out, op)
		}
	}
	return out
}

// Count returns how many ops of the given kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
