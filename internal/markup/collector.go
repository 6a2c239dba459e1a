// Package markup collects the annotation objects the transfer pipeline
// recognizes from a document.
package markup

import (
	"log/slog"

	"github.com/docuflow/annoport/internal/engine"
	"github.com/docuflow/annoport/internal/geom"
)

// Annotation is a recognized markup object positioned on a page. Created by
// Collect, consumed by linking, never mutated.
type Annotation struct {
	Kind    engine.Kind
	Page    int // 0-based
	Box     geom.Rect
	Center  geom.Point
	Content string
	Title   string
}

// Collect returns all recognized annotations across the document's pages in
// page order. A page whose markup cannot be enumerated is logged and skipped;
// the scan continues with the remaining pages.
func Collect(doc engine.Document, logger *slog.Logger) []Annotation {
	var out []Annotation

	for page := 0; page < doc.PageCount(); page++ {
		markups, err := doc.Markups(page)
		if err != nil {
			logger.Warn("skipping page, markup enumeration failed", "page", page+1, "error", err)
			continue
		}

		for _, m := range markups {
			if !recognized(m.Kind) {
				continue
			}

			// Content falls back to the title when absent; both may be empty.
			content := m.Content
			if content == "" {
				content = m.Title
			}

			out = append(out, Annotation{
				Kind:    m.Kind,
				Page:    page,
				Box:     m.Box,
				Center:  m.Box.Center(),
				Content: content,
				Title:   m.Title,
			})
		}
	}

	logger.Info("collected annotations", "count", len(out))
	return out
}

func recognized(k engine.Kind) bool {
	switch k {
	case engine.KindNote, engine.KindFreeText, engine.KindDrawing,
		engine.KindHighlight, engine.KindUnderline, engine.KindStrikeOut, engine.KindSquiggly:
		return true
	default:
		return false
	}
}
