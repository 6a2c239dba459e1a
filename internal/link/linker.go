// Package link binds each source annotation to the anchor it logically
// refers to: the nearest anchor that appears strictly earlier in page-major,
// top-to-bottom reading flow.
package link

import (
	"log/slog"
	"math"

	"github.com/docuflow/annoport/internal/anchor"
	"github.com/docuflow/annoport/internal/geom"
	"github.com/docuflow/annoport/internal/markup"
)

// Binding records the anchor an annotation was linked to, along with the
// displacement needed to reproduce the annotation relative to that anchor in
// another layout.
type Binding struct {
	Annotation markup.Annotation
	AnchorID   string
	Distance   float64
	Offset     geom.Point // annotation center - anchor center
}

// Link selects, for every annotation, the eligible anchor of minimum
// Euclidean distance between centers. Annotations with no eligible anchor
// produce no binding and are returned separately as unlinked.
func Link(annots []markup.Annotation, anchors map[string]anchor.Token, logger *slog.Logger) ([]Binding, []markup.Annotation) {
	var bindings []Binding
	var unlinked []markup.Annotation

	for _, n := range annots {
		best, dist, ok := closest(n, anchors)
		if !ok {
			logger.Warn("no eligible anchor for annotation",
				"page", n.Page+1, "kind", n.Kind.String())
			unlinked = append(unlinked, n)
			continue
		}

		bindings = append(bindings, Binding{
			Annotation: n,
			AnchorID:   best.ID,
			Distance:   dist,
			Offset:     n.Center.Sub(best.Center),
		})
		logger.Debug("linked annotation",
			"page", n.Page+1, "kind", n.Kind.String(), "anchor", best.ID, "distance", dist)
	}

	logger.Info("linked annotations", "linked", len(bindings), "unlinked", len(unlinked))
	return bindings, unlinked
}

// eligible reports whether the anchor appears strictly earlier than the
// annotation in reading flow: an earlier page, or higher up on the same page.
func eligible(a anchor.Token, n markup.Annotation) bool {
	if a.Page != n.Page {
		return a.Page < n.Page
	}
	return a.Center.Y < n.Center.Y
}

// closest returns the eligible anchor minimizing Euclidean distance to the
// annotation center. Equal distances resolve to the lower reading-order rank,
// so the result never depends on map iteration order.
func closest(n markup.Annotation, anchors map[string]anchor.Token) (anchor.Token, float64, bool) {
	var best anchor.Token
	bestDist := math.Inf(1)
	found := false

	for _, a := range anchors {
		if !eligible(a, n) {
			continue
		}
		d := n.Center.Distance(a.Center)
		if !found || d < bestDist || (d == bestDist && a.Rank < best.Rank) {
			best, bestDist, found = a, d, true
		}
	}

	return best, bestDist, found
}
