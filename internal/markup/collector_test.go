package markup

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/docuflow/annoport/internal/engine"
	"github.com/docuflow/annoport/internal/geom"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCollect_FiltersUnrecognizedKinds(t *testing.T) {
	doc := engine.NewMemoryDocument(engine.MemoryPage{
		Bounds: geom.NewRect(0, 0, 600, 800),
		Markups: []engine.Markup{
			{Kind: engine.KindNote, Box: geom.NewRect(10, 10, 20, 20), Content: "keep"},
			{Kind: engine.KindUnknown, Box: geom.NewRect(50, 50, 20, 20), Content: "drop"},
			{Kind: engine.KindHighlight, Box: geom.NewRect(90, 90, 20, 20)},
		},
	})

	got := Collect(doc, testLogger())

	if len(got) != 2 {
		t.Fatalf("collected %d annotations, want 2", len(got))
	}
	if got[0].Kind != engine.KindNote || got[1].Kind != engine.KindHighlight {
		t.Errorf("kinds = %v, %v", got[0].Kind, got[1].Kind)
	}
}

func TestCollect_ContentFallsBackToTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		title   string
		want    string
	}{
		{"content present", "a note", "author", "a note"},
		{"title only", "", "author", "author"},
		{"both empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := engine.NewMemoryDocument(engine.MemoryPage{
				Bounds: geom.NewRect(0, 0, 600, 800),
				Markups: []engine.Markup{
					{Kind: engine.KindNote, Box: geom.NewRect(10, 10, 20, 20), Content: tt.content, Title: tt.title},
				},
			})

			got := Collect(doc, testLogger())
			if len(got) != 1 {
				t.Fatalf("collected %d annotations, want 1", len(got))
			}
			if got[0].Content != tt.want {
				t.Errorf("Content = %q, want %q", got[0].Content, tt.want)
			}
		})
	}
}

func TestCollect_CenterDerivedFromBox(t *testing.T) {
	doc := engine.NewMemoryDocument(engine.MemoryPage{
		Bounds: geom.NewRect(0, 0, 600, 800),
		Markups: []engine.Markup{
			{Kind: engine.KindDrawing, Box: geom.NewRect(100, 200, 40, 60)},
		},
	})

	got := Collect(doc, testLogger())
	if len(got) != 1 {
		t.Fatalf("collected %d annotations, want 1", len(got))
	}
	if got[0].Center != (geom.Point{X: 120, Y: 230}) {
		t.Errorf("Center = %+v", got[0].Center)
	}
}

func TestCollect_BrokenPageDoesNotAbortScan(t *testing.T) {
	doc := engine.NewMemoryDocument(
		engine.MemoryPage{
			Bounds:     geom.NewRect(0, 0, 600, 800),
			MarkupsErr: errors.New("corrupt annotation array"),
		},
		engine.MemoryPage{
			Bounds: geom.NewRect(0, 0, 600, 800),
			Markups: []engine.Markup{
				{Kind: engine.KindUnderline, Box: geom.NewRect(10, 10, 20, 20)},
			},
		},
	)

	got := Collect(doc, testLogger())
	if len(got) != 1 {
		t.Fatalf("collected %d annotations, want 1", len(got))
	}
	if got[0].Page != 1 {
		t.Errorf("Page = %d, want 1", got[0].Page)
	}
}
