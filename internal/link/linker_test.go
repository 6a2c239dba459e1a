package link

import (
	"io"
	"log/slog"
	"testing"

	"github.com/docuflow/annoport/internal/anchor"
	"github.com/docuflow/annoport/internal/engine"
	"github.com/docuflow/annoport/internal/geom"
	"github.com/docuflow/annoport/internal/markup"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func token(id string, page int, x, y float64, rank int) anchor.Token {
	return anchor.Token{ID: id, Page: page, Center: geom.Point{X: x, Y: y}, Rank: rank}
}

func note(page int, x, y float64) markup.Annotation {
	return markup.Annotation{
		Kind:   engine.KindNote,
		Page:   page,
		Box:    geom.RectAround(geom.Point{X: x, Y: y}, 20, 10),
		Center: geom.Point{X: x, Y: y},
	}
}

func TestLink_NearestPrecedingAnchor(t *testing.T) {
	// M1 and M2 both precede the annotation; M2 is 10 units away, M1 is 210.
	anchors := map[string]anchor.Token{
		"M1": token("M1", 0, 100, 100, 0),
		"M2": token("M2", 0, 100, 300, 1),
	}
	annots := []markup.Annotation{note(0, 100, 310)}

	bindings, unlinked := Link(annots, anchors, testLogger())

	if len(unlinked) != 0 {
		t.Fatalf("unlinked = %d, want 0", len(unlinked))
	}
	if len(bindings) != 1 {
		t.Fatalf("bindings = %d, want 1", len(bindings))
	}
	b := bindings[0]
	if b.AnchorID != "M2" {
		t.Errorf("AnchorID = %s, want M2", b.AnchorID)
	}
	if b.Distance != 10 {
		t.Errorf("Distance = %v, want 10", b.Distance)
	}
	if b.Offset != (geom.Point{X: 0, Y: 10}) {
		t.Errorf("Offset = %+v, want {0 10}", b.Offset)
	}
}

func TestLink_Eligibility(t *testing.T) {
	tests := []struct {
		name       string
		anchor     anchor.Token
		annotation markup.Annotation
		eligible   bool
	}{
		{
			name:       "earlier page",
			anchor:     token("M1", 0, 100, 700, 0),
			annotation: note(1, 100, 10),
			eligible:   true,
		},
		{
			name:       "same page above",
			anchor:     token("M1", 1, 100, 100, 0),
			annotation: note(1, 100, 200),
			eligible:   true,
		},
		{
			name:       "same page below",
			anchor:     token("M1", 1, 100, 300, 0),
			annotation: note(1, 100, 200),
			eligible:   false,
		},
		{
			name:       "same page same height",
			anchor:     token("M1", 1, 50, 200, 0),
			annotation: note(1, 100, 200),
			eligible:   false,
		},
		{
			name:       "later page",
			anchor:     token("M1", 2, 100, 10, 0),
			annotation: note(1, 100, 700),
			eligible:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchors := map[string]anchor.Token{tt.anchor.ID: tt.anchor}
			bindings, unlinked := Link([]markup.Annotation{tt.annotation}, anchors, testLogger())

			if tt.eligible && len(bindings) != 1 {
				t.Errorf("expected a binding, got unlinked=%d", len(unlinked))
			}
			if !tt.eligible && len(unlinked) != 1 {
				t.Errorf("expected unlinked, got bindings=%d", len(bindings))
			}
		})
	}
}

func TestLink_NoEligibleAnchorReportsUnlinked(t *testing.T) {
	bindings, unlinked := Link([]markup.Annotation{note(0, 100, 100)}, nil, testLogger())

	if len(bindings) != 0 {
		t.Errorf("bindings = %d, want 0", len(bindings))
	}
	if len(unlinked) != 1 {
		t.Errorf("unlinked = %d, want 1", len(unlinked))
	}
}

func TestLink_EquidistantTieBreaksOnRank(t *testing.T) {
	// Both anchors are exactly 50 units from the annotation center; the
	// lower reading-order rank must win regardless of map iteration order.
	anchors := map[string]anchor.Token{
		"M8": token("M8", 0, 60, 100, 7),
		"M3": token("M3", 0, 140, 100, 2),
	}
	annots := []markup.Annotation{note(0, 100, 130)}

	for i := 0; i < 10; i++ {
		bindings, _ := Link(annots, anchors, testLogger())
		if len(bindings) != 1 {
			t.Fatalf("bindings = %d, want 1", len(bindings))
		}
		if bindings[0].AnchorID != "M3" {
			t.Fatalf("AnchorID = %s, want M3 (lower rank)", bindings[0].AnchorID)
		}
	}
}

func TestLink_MultipleAnnotations(t *testing.T) {
	anchors := map[string]anchor.Token{
		"M1": token("M1", 0, 100, 50, 0),
		"M2": token("M2", 0, 100, 400, 1),
	}
	annots := []markup.Annotation{
		note(0, 100, 60),  // just below M1
		note(0, 100, 410), // just below M2
		note(0, 100, 40),  // above everything: unlinked
	}

	bindings, unlinked := Link(annots, anchors, testLogger())

	if len(bindings) != 2 || len(unlinked) != 1 {
		t.Fatalf("bindings = %d, unlinked = %d; want 2, 1", len(bindings), len(unlinked))
	}
	if bindings[0].AnchorID != "M1" || bindings[1].AnchorID != "M2" {
		t.Errorf("anchors = %s, %s; want M1, M2", bindings[0].AnchorID, bindings[1].AnchorID)
	}
}
