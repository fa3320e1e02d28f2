package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

type rgb struct{ R, G, B int }

// Palette holds the colors of one theme.
type Palette struct {
	Background rgb
	Text       rgb
	Accent     rgb
	Muted      rgb
}

var palettes = map[entities.Theme]Palette{
	entities.ThemeLight: {
		Background: rgb{255, 255, 255},
		Text:       rgb{30, 41, 59},
		Accent:     rgb{79, 70, 229},
		Muted:      rgb{100, 116, 139},
	},
	entities.ThemeDark: {
		Background: rgb{15, 23, 42},
		Text:       rgb{226, 232, 240},
		Accent:     rgb{129, 140, 248},
		Muted:      rgb{148, 163, 184},
	},
}

// PaletteFor returns the palette of the theme, light when unknown.
func PaletteFor(theme entities.Theme) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[entities.ThemeLight]
}

func (p Palette) color(style Style) rgb {
	switch style {
	case StyleTitle, StyleHeading:
		return p.Accent
	case StyleMeta, StyleQuote:
		return p.Muted
	default:
		return p.Text
	}
}

// Renderer draws lessons as PDF documents.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// fpdfSplitter measures text with the document's own font metrics.
type fpdfSplitter struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

func (s *fpdfSplitter) Split(text string, style Style, width float64) []string {
	spec := style.Spec()
	s.pdf.SetFont(spec.Family, spec.Emphasis, spec.Size)
	return s.pdf.SplitText(s.translate(text), width)
}

// Render writes the lesson as a PDF to w.
func (r *Renderer) Render(w io.Writer, lesson *entities.Lesson, theme entities.Theme) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(r.opts.Margin, r.opts.Margin, r.opts.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(lesson.CreatedAt)
	pdf.SetModificationDate(lesson.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Lingo Spark: "+lesson.Theme, true)
	pdf.SetCreator("Lingo Spark", false)

	splitter := &fpdfSplitter{pdf: pdf, translate: pdf.UnicodeTranslatorFromDescriptor("")}
	pages := Layout(lesson, splitter, r.opts)
	palette := PaletteFor(theme)

	for _, page := range pages {
		pdf.AddPage()
		pdf.SetFillColor(palette.Background.R, palette.Background.G, palette.Background.B)
		pdf.Rect(0, 0, r.opts.PageWidth, r.opts.PageHeight, "F")

		for _, b := range page.Blocks {
			spec := b.Style.Spec()
			c := palette.color(b.Style)
			pdf.SetFont(spec.Family, spec.Emphasis, spec.Size)
			pdf.SetTextColor(c.R, c.G, c.B)

			// Lines are already translated by the splitter.
			for i, line := range b.Lines {
				pdf.SetXY(b.X, b.Y+float64(i)*b.LineHeight)
				pdf.CellFormat(b.Width, b.LineHeight, line, "", 0, "L", false, 0, "")
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileName derives the download name from the lesson theme.
func FileName(lesson *entities.Lesson) string {
	name := strings.Trim(nonAlnum.ReplaceAllString(lesson.Theme, "_"), "_")
	if name == "" {
		name = "Lesson"
	}
	return "Lingo_Spark_" + name + ".pdf"
}
