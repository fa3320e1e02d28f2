package entities

import (
	"errors"
	"math/rand"
	"strings"
	"unicode"
)

var (
	ErrEmptySentence = errors.New("sentence has no words")
	ErrTileNotFound  = errors.New("tile not found")
	ErrPuzzleSolved  = errors.New("puzzle already solved")
)

// Tile is one movable word of a puzzle. IDs keep duplicate words apart.
type Tile struct {
	ID   int    `json:"id"`
	Word string `json:"word"`
}

// Puzzle is the sentence-reconstruction exercise for one vocabulary entry.
type Puzzle struct {
	Sentence  string   `json:"sentence"`
	Target    []string `json:"target"`
	Pool      []Tile   `json:"pool"`
	Selection []Tile   `json:"selection"`
	Attempts  int      `json:"attempts"`
	Failed    bool     `json:"failed"` // cleared by the view after a short delay
	Solved    bool     `json:"solved"`
}

// Tokenize strips punctuation and splits the sentence on whitespace.
func Tokenize(sentence string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, sentence)
	return strings.Fields(cleaned)
}

// NewPuzzle tokenizes the sentence and shuffles its words into the pool.
func NewPuzzle(sentence string, rng *rand.Rand) (*Puzzle, error) {
	target := Tokenize(sentence)
	if len(target) == 0 {
		return nil, ErrEmptySentence
	}

	pool := make([]Tile, len(target))
	for i, w := range target {
		pool[i] = Tile{ID: i, Word: w}
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	// Fisher-Yates; the result may equal the original order for short sentences.
	shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return &Puzzle{
		Sentence:  sentence,
		Target:    target,
		Pool:      pool,
		Selection: make([]Tile, 0, len(target)),
	}, nil
}

// Pick moves a tile from the pool to the end of the selection.
func (p *Puzzle) Pick(tileID int) error {
	if p.Solved {
		return ErrPuzzleSolved
	}
	idx := indexOfTile(p.Pool, tileID)
	if idx < 0 {
		return ErrTileNotFound
	}
	p.Selection = append(p.Selection, p.Pool[idx])
	p.Pool = append(p.Pool[:idx], p.Pool[idx+1:]...)
	return nil
}

// Unpick moves a tile from the selection back to the end of the pool.
func (p *Puzzle) Unpick(tileID int) error {
	if p.Solved {
		return ErrPuzzleSolved
	}
	idx := indexOfTile(p.Selection, tileID)
	if idx < 0 {
		return ErrTileNotFound
	}
	p.Pool = append(p.Pool, p.Selection[idx])
	p.Selection = append(p.Selection[:idx], p.Selection[idx+1:]...)
	return nil
}

// Reset returns every selected tile to the pool.
func (p *Puzzle) Reset() {
	if p.Solved {
		return
	}
	p.Pool = append(p.Pool, p.Selection...)
	p.Selection = p.Selection[:0]
	p.Failed = false
}

// Check compares the selection with the target, ignoring case.
func (p *Puzzle) Check() bool {
	if p.Solved {
		return true
	}
	p.Attempts++
	if SentencesMatch(p.SelectedWords(), p.Target) {
		p.Solved = true
		p.Failed = false
		return true
	}
	p.Failed = true
	return false
}

// ClearFailure drops the transient error flag.
func (p *Puzzle) ClearFailure() {
	p.Failed = false
}

// SelectedWords returns the words of the selection in order.
func (p *Puzzle) SelectedWords() []string {
	words := make([]string, len(p.Selection))
	for i, t := range p.Selection {
		words[i] = t.Word
	}
	return words
}

// Answer returns the target sentence joined with single spaces.
func (p *Puzzle) Answer() string {
	return strings.Join(p.Target, " ")
}

// Clone returns a deep copy.
func (p *Puzzle) Clone() *Puzzle {
	if p == nil {
		return nil
	}
	c := *p
	c.Target = append([]string(nil), p.Target...)
	c.Pool = append([]Tile(nil), p.Pool...)
	c.Selection = append([]Tile(nil), p.Selection...)
	return &c
}

// SentencesMatch joins both token lists with single spaces and compares them case-insensitively.
func SentencesMatch(got, want []string) bool {
	return strings.EqualFold(strings.Join(got, " "), strings.Join(want, " "))
}

func indexOfTile(tiles []Tile, id int) int {
	for i, t := range tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}
