// Package export turns a stored lesson into a printable document.
package export

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// Style is the typographic role of a block.
type Style int

const (
	StyleTitle Style = iota
	StyleMeta
	StyleHeading
	StyleSubheading
	StyleBody
	StyleQuote
)

// StyleSpec is the font and spacing of a Style, in millimetres and points.
type StyleSpec struct {
	Family     string
	Emphasis   string // "", "B", "I"
	Size       float64
	LineHeight float64
	SpaceAfter float64
}

var styleSpecs = map[Style]StyleSpec{
	StyleTitle:      {Family: "Helvetica", Emphasis: "B", Size: 22, LineHeight: 10, SpaceAfter: 2},
	StyleMeta:       {Family: "Helvetica", Emphasis: "", Size: 10, LineHeight: 5, SpaceAfter: 6},
	StyleHeading:    {Family: "Helvetica", Emphasis: "B", Size: 15, LineHeight: 8, SpaceAfter: 3},
	StyleSubheading: {Family: "Helvetica", Emphasis: "B", Size: 12, LineHeight: 6, SpaceAfter: 1},
	StyleBody:       {Family: "Helvetica", Emphasis: "", Size: 11, LineHeight: 5.5, SpaceAfter: 3},
	StyleQuote:      {Family: "Helvetica", Emphasis: "I", Size: 10.5, LineHeight: 5, SpaceAfter: 2},
}

// Spec returns the font and spacing of the style.
func (s Style) Spec() StyleSpec {
	return styleSpecs[s]
}

// LineSplitter breaks text into lines no wider than width for the given style.
type LineSplitter interface {
	Split(text string, style Style, width float64) []string
}

// Options sets the page geometry in millimetres. Content moves to a new page
// once the cursor would pass Threshold.
type Options struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Threshold  float64
	Indent     float64
}

// DefaultOptions is an A4 portrait page.
func DefaultOptions() Options {
	return Options{
		PageWidth:  210,
		PageHeight: 297,
		Margin:     20,
		Threshold:  270,
		Indent:     6,
	}
}

// Block is a run of lines drawn at X, Y (top of the first line).
type Block struct {
	Style      Style
	Section    string
	Lines      []string
	X, Y       float64
	Width      float64
	LineHeight float64
}

// Page holds the blocks of one page, top to bottom.
type Page struct {
	Blocks []Block
}

// Section names in document order.
const (
	SectionHeader     = "Header"
	SectionVocabulary = "Vocabulary"
	SectionConcept    = "Concept"
	SectionNarrative  = "Narrative"
	SectionMission    = "Mission"
)

type layouter struct {
	splitter LineSplitter
	opts     Options
	width    float64

	pages   []Page
	cursor  float64
	section string
}

// Layout positions the lesson on pages. It depends only on its arguments.
func Layout(lesson *entities.Lesson, splitter LineSplitter, opts Options) []Page {
	l := &layouter{
		splitter: splitter,
		opts:     opts,
		width:    opts.PageWidth - 2*opts.Margin,
	}
	l.newPage()

	l.section = SectionHeader
	l.place(StyleTitle, 0, "Lingo Spark")
	l.place(StyleHeading, 0, lesson.Theme)
	l.place(StyleMeta, 0, metaLine(lesson))

	l.section = SectionVocabulary
	l.place(StyleHeading, 0, "Vocabulary")
	for _, v := range lesson.Vocabulary {
		l.place(StyleSubheading, 0, v.Word)
		l.place(StyleBody, 0, v.Definition)
		for _, ex := range v.Examples {
			l.place(StyleQuote, l.opts.Indent, fmt.Sprintf("\"%s\"", ex))
		}
	}

	c := lesson.Concept
	l.section = SectionConcept
	l.place(StyleHeading, 0, "Concept: "+c.Title)
	l.place(StyleBody, 0, c.Explanation)
	if c.Analogy != "" {
		l.place(StyleQuote, l.opts.Indent, "Think of it like this: "+c.Analogy)
	}
	if len(c.ConversationStarters) > 0 {
		l.place(StyleSubheading, 0, "Conversation starters")
		for _, s := range c.ConversationStarters {
			l.place(StyleBody, l.opts.Indent, "- "+s)
		}
	}

	l.section = SectionNarrative
	l.place(StyleHeading, 0, "Narrative: "+lesson.Story.Title)
	for _, para := range paragraphs(lesson.Story.Content) {
		l.place(StyleBody, 0, para)
	}

	l.section = SectionMission
	l.place(StyleHeading, 0, "Mission")
	l.place(StyleBody, 0, lesson.Challenge.Task)
	if lesson.Challenge.Tip != "" {
		l.place(StyleQuote, l.opts.Indent, "Tip: "+lesson.Challenge.Tip)
	}

	return l.pages
}

func metaLine(lesson *entities.Lesson) string {
	parts := []string{lesson.Date, titleCase(string(lesson.Level)), titleCase(string(lesson.Vibe))}
	if lesson.Topic != "" {
		parts = append(parts, lesson.Topic)
	}
	return strings.Join(parts, " | ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l *layouter) newPage() {
	l.pages = append(l.pages, Page{})
	l.cursor = l.opts.Margin
}

func (l *layouter) atTop() bool {
	return l.cursor <= l.opts.Margin
}

// place adds text as a block below the cursor, breaking the page when the
// block would pass the threshold. A block taller than a whole page is split.
func (l *layouter) place(style Style, indent float64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	spec := style.Spec()
	width := l.width - indent
	lines := l.splitter.Split(text, style, width)

	for len(lines) > 0 {
		height := float64(len(lines)) * spec.LineHeight
		if l.cursor+height > l.opts.Threshold && !l.atTop() {
			l.newPage()
			continue
		}

		n := len(lines)
		if l.cursor+height > l.opts.Threshold {
			n = max(1, int((l.opts.Threshold-l.cursor)/spec.LineHeight))
		}

		page := &l.pages[len(l.pages)-1]
		page.Blocks = append(page.Blocks, Block{
			Style:      style,
			Section:    l.section,
			Lines:      lines[:n],
			X:          l.opts.Margin + indent,
			Y:          l.cursor,
			Width:      width,
			LineHeight: spec.LineHeight,
		})
		l.cursor += float64(n) * spec.LineHeight
		lines = lines[n:]

		if len(lines) > 0 {
			l.newPage()
		}
	}
	l.cursor += spec.SpaceAfter
}
