// Package anchor finds anchor tokens (recurring textual record labels such
// as "M1042") in a document's text and maps each id to its first occurrence
// in reading order. The two layouts of a document are correlated through
// these maps.
package anchor

import (
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/docuflow/annoport/internal/engine"
	"github.com/docuflow/annoport/internal/geom"
)

// DefaultPattern matches the letter M followed by decimal digits, word-bounded.
const DefaultPattern = `\bM\d+\b`

// Token is one anchor occurrence.
type Token struct {
	ID     string
	Page   int // 0-based
	Box    geom.Rect
	Center geom.Point

	// Rank is the token's position in reading order: a strictly increasing
	// counter over text runs, page-major. Within a document, an id always
	// resolves to its lowest-ranked occurrence.
	Rank int
}

// Extractor scans documents for anchor tokens.
type Extractor struct {
	pattern *regexp.Regexp
	logger  *slog.Logger
}

// NewExtractor compiles the anchor pattern. An empty pattern selects
// DefaultPattern.
func NewExtractor(pattern string, logger *slog.Logger) (*Extractor, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling anchor pattern %q: %w", pattern, err)
	}
	return &Extractor{pattern: re, logger: logger}, nil
}

// Extract scans the document in reading order and returns a map of anchor id
// to its first occurrence. A page whose text cannot be decomposed is logged
// and contributes no tokens; extraction of the remaining pages continues.
func (e *Extractor) Extract(doc engine.Document) map[string]Token {
	tokens := make(map[string]Token)
	rank := 0

	for page := 0; page < doc.PageCount(); page++ {
		runs, err := doc.TextRuns(page)
		if err != nil {
			e.logger.Warn("skipping page, text decomposition failed", "page", page+1, "error", err)
			continue
		}

		for _, run := range runs {
			for _, loc := range e.pattern.FindAllStringIndex(run.Text, -1) {
				id := run.Text[loc[0]:loc[1]]
				box := matchBox(run, loc[0], loc[1])
				tok := Token{ID: id, Page: page, Box: box, Center: box.Center(), Rank: rank}

				// First occurrence wins. Rank is strictly increasing across
				// runs, so a later duplicate can never displace an earlier one.
				if prev, seen := tokens[id]; seen && prev.Rank <= tok.Rank {
					continue
				}
				tokens[id] = tok
			}
			rank++
		}
	}

	return tokens
}

// matchBox approximates the bounding box of a match inside a run by linear
// horizontal interpolation, assuming uniform glyph widths. Proportional
// fonts drift slightly under this approximation.
func matchBox(run engine.TextRun, start, end int) geom.Rect {
	total := utf8.RuneCountInString(run.Text)
	if total == 0 {
		return geom.NewRect(run.Box.X, run.Box.Y, 0, run.Box.Height)
	}

	charWidth := run.Box.Width / float64(total)
	lead := utf8.RuneCountInString(run.Text[:start])
	span := utf8.RuneCountInString(run.Text[start:end])

	return geom.NewRect(
		run.Box.X+float64(lead)*charWidth,
		run.Box.Y,
		float64(span)*charWidth,
		run.Box.Height,
	)
}
