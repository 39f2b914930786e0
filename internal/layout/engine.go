package layout

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"duach/internal/fonts"
)

// Page geometry in millimeters: ISO A4 with uniform side margins.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 20.0

	// lineGap is the extra leading between wrapped lines.
	lineGap = 2.0
	// paragraphGap is the spacing after a text block.
	paragraphGap = 3.0
)

// unicodeFamily is the font family name registered for the resolved
// Hebrew-capable TrueType pair.
const unicodeFamily = "reportfont"

// Engine renders shaped text onto paginated A4 pages. It owns the mutable
// vertical cursor for exactly one document; engines are never shared
// between concurrent report constructions.
type Engine struct {
	pdf      *gofpdf.Fpdf
	logger   *slog.Logger
	family   string
	degraded bool
	y        float64
	page     int
}

// NewEngine creates an Engine using the resolved font asset. A degraded
// asset switches to the built-in Helvetica core font with non-Latin
// characters replaced, which keeps the document generable.
func NewEngine(logger *slog.Logger, asset fonts.Asset) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)

	e := &Engine{pdf: pdf, logger: logger}
	if asset.Degraded || asset.RegularPath == "" {
		e.family = "Helvetica"
		e.degraded = true
		logger.Warn("layout engine running in degraded Latin-only font mode")
	} else {
		pdf.AddUTF8Font(unicodeFamily, "", asset.RegularPath)
		pdf.AddUTF8Font(unicodeFamily, "B", asset.BoldPath)
		e.family = unicodeFamily
	}
	return e
}

// Degraded reports whether the engine is in Latin-only fallback mode.
func (e *Engine) Degraded() bool {
	return e.degraded
}

// MaxWidth returns the usable line width between the side margins.
func (e *Engine) MaxWidth() float64 {
	return PageWidth - 2*Margin
}

// CursorY returns the current vertical position.
func (e *Engine) CursorY() float64 {
	return e.y
}

// Page returns the current page number, zero before the first AddPage.
func (e *Engine) Page() int {
	return e.page
}

// AddPage starts a new page and resets the cursor to the top margin.
func (e *Engine) AddPage() {
	e.pdf.AddPage()
	e.page++
	e.y = Margin
}

// EnsureSpace starts a new page when fewer than needed millimeters remain
// above the bottom margin.
func (e *Engine) EnsureSpace(needed float64) {
	if e.page == 0 || e.y+needed > PageHeight-Margin {
		e.AddPage()
	}
}

// Advance moves the cursor down without drawing.
func (e *Engine) Advance(dy float64) {
	e.y += dy
}

// SectionHeader writes a right-aligned section header. Top-level headers
// get extra leading and a highlighted background band; deeper levels get
// progressively less.
func (e *Engine) SectionHeader(title string, level int) {
	var size, leading float64
	switch level {
	case 1:
		size, leading = 18, 20
	case 2:
		size, leading = 14, 15
	default:
		size, leading = 12, 10
	}
	bandH := size*0.6 + 6

	e.y += leading
	e.EnsureSpace(bandH)
	e.setFont(size, true)

	if level == 1 {
		e.pdf.SetFillColor(232, 236, 244)
		e.pdf.Rect(Margin, e.y-2, e.MaxWidth(), bandH, "F")
	}

	shaped := e.prepare(title)
	x := PageWidth - Margin - e.pdf.GetStringWidth(shaped)
	e.pdf.Text(x, e.y+size*0.5, shaped)
	e.y += bandH
}

// Text writes a right-aligned paragraph, wrapping on logical word
// boundaries so no rendered line exceeds the usable width.
func (e *Engine) Text(text string, size float64, bold bool) {
	if e.degraded {
		text = sanitizeLatin(text)
	}
	e.setFont(size, bold)

	lineH := size * 0.5
	lines := WrapText(text, e.MaxWidth(), e.pdf.GetStringWidth)
	for _, line := range lines {
		e.EnsureSpace(lineH + lineGap)
		shaped := e.prepare(line)
		x := PageWidth - Margin - e.pdf.GetStringWidth(shaped)
		e.pdf.Text(x, e.y+lineH, shaped)
		e.y += lineH + lineGap
	}
	e.y += paragraphGap
}

// CenteredTextAt writes a single centered line at a fixed vertical
// position, used by the title page.
func (e *Engine) CenteredTextAt(y float64, text string, size float64, bold bool) {
	if e.degraded {
		text = sanitizeLatin(text)
	}
	e.setFont(size, bold)
	shaped := e.prepare(text)
	x := (PageWidth - e.pdf.GetStringWidth(shaped)) / 2
	e.pdf.Text(x, y, shaped)
}

// HorizontalRule draws a separator line at a fixed vertical position.
func (e *Engine) HorizontalRule(y float64) {
	e.pdf.SetDrawColor(120, 120, 120)
	e.pdf.Line(Margin+10, y, PageWidth-Margin-10, y)
}

// Image embeds a pre-rendered chart image, scaled to the usable width
// while preserving its aspect ratio. maxHeight caps the rendered height;
// narrower renders are centered horizontally. The engine paginates first
// when the image would not fit.
func (e *Engine) Image(path string, maxHeight float64) {
	opts := gofpdf.ImageOptions{ReadDpi: true}
	info := e.pdf.RegisterImageOptions(path, opts)
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		// Unreadable image; draw into the full box and let gofpdf
		// record the error.
		e.EnsureSpace(maxHeight + 10)
		e.pdf.ImageOptions(path, Margin, e.y, e.MaxWidth(), maxHeight, false, opts, 0, "")
		e.y += maxHeight + 10
		return
	}

	w := e.MaxWidth()
	h := w * info.Height() / info.Width()
	if h > maxHeight {
		h = maxHeight
		w = h * info.Width() / info.Height()
	}
	x := Margin + (e.MaxWidth()-w)/2

	e.EnsureSpace(h + 10)
	e.pdf.ImageOptions(path, x, e.y, w, h, false, opts, 0, "")
	e.y += h + 10
}

// Output writes the finished document to w.
func (e *Engine) Output(w io.Writer) error {
	if err := e.Err(); err != nil {
		return err
	}
	return e.pdf.Output(w)
}

// Err returns the accumulated drawing error, if any.
func (e *Engine) Err() error {
	if e.pdf.Err() {
		return fmt.Errorf("pdf engine error: %w", e.pdf.Error())
	}
	return nil
}

// setFont selects the document family in the requested size and weight.
func (e *Engine) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	e.pdf.SetFont(e.family, style, size)
}

// prepare converts a logical string into its drawable form: bidi shaping
// normally, Latin sanitizing in degraded mode.
func (e *Engine) prepare(s string) string {
	if e.degraded {
		return sanitizeLatin(s)
	}
	return Shape(s)
}

// sanitizeLatin replaces characters the core Latin font cannot render.
func sanitizeLatin(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}
