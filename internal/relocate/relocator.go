// Package relocate recomputes linked annotation geometry in the target
// layout and queues the relocated markup for output.
package relocate

import (
	"log/slog"

	"github.com/docuflow/annoport/internal/anchor"
	"github.com/docuflow/annoport/internal/engine"
	"github.com/docuflow/annoport/internal/geom"
	"github.com/docuflow/annoport/internal/link"
)

// SkipReason explains why a binding produced no output annotation. The
// reason strings appear verbatim in the run report.
type SkipReason string

const (
	SkipAnchorMissing SkipReason = "anchor not present in target"
	SkipOutsideBounds SkipReason = "outside page bounds"
	SkipCreateFailed  SkipReason = "annotation creation failed"
)

// Skip records one binding that was not transferred.
type Skip struct {
	AnchorID string
	Kind     engine.Kind
	Reason   SkipReason
}

// Result summarizes a relocation pass.
type Result struct {
	Created int
	Skips   []Skip
}

// Relocate resolves each binding's anchor in the target layout, recomputes
// the annotation geometry from the anchor's new position plus the recorded
// offset, clips to the page, and queues the relocated markup on out. A
// failure on one binding never aborts the remaining ones.
func Relocate(bindings []link.Binding, targets map[string]anchor.Token, target engine.Document, out engine.Stamper, logger *slog.Logger) *Result {
	res := &Result{}

	for _, b := range bindings {
		tok, ok := targets[b.AnchorID]
		if !ok {
			logger.Warn("skipping annotation, anchor not present in target", "anchor", b.AnchorID)
			res.Skips = append(res.Skips, Skip{AnchorID: b.AnchorID, Kind: b.Annotation.Kind, Reason: SkipAnchorMissing})
			continue
		}

		// Same width and height as the original, centered at the anchor's
		// new position plus the recorded offset.
		center := tok.Center.Add(b.Offset)
		box := geom.RectAround(center, b.Annotation.Box.Width, b.Annotation.Box.Height)

		bounds := target.PageBounds(tok.Page)
		if !bounds.ContainsRect(box) {
			box = box.Intersection(bounds)
			if box.IsEmpty() {
				logger.Warn("skipping annotation, outside page bounds",
					"anchor", b.AnchorID, "page", tok.Page+1)
				res.Skips = append(res.Skips, Skip{AnchorID: b.AnchorID, Kind: b.Annotation.Kind, Reason: SkipOutsideBounds})
				continue
			}
		}

		m := engine.Markup{
			Kind:    outputKind(b.Annotation.Kind),
			Page:    tok.Page,
			Box:     box,
			Content: b.Annotation.Content,
			Title:   b.Annotation.Title,
		}
		if err := out.Add(tok.Page, m); err != nil {
			logger.Error("creating annotation failed",
				"anchor", b.AnchorID, "kind", m.Kind.String(), "error", err)
			res.Skips = append(res.Skips, Skip{AnchorID: b.AnchorID, Kind: b.Annotation.Kind, Reason: SkipCreateFailed})
			continue
		}

		res.Created++
		logger.Info("relocated annotation",
			"kind", m.Kind.String(), "anchor", b.AnchorID, "page", tok.Page+1)
	}

	return res
}

// outputKind maps a collected kind to the kind created in the output. Notes,
// free text, and drawings keep their kind (drawings become rectangle shapes
// in the engine). The four text-markup kinds all come back as highlights,
// since the new layout's underlying text geometry is unknown.
func outputKind(k engine.Kind) engine.Kind {
	switch k {
	case engine.KindHighlight, engine.KindUnderline, engine.KindStrikeOut, engine.KindSquiggly:
		return engine.KindHighlight
	default:
		return k
	}
}
