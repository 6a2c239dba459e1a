package engine

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/docuflow/annoport/internal/geom"
)

// noteIconSize is the edge length of the icon rectangle for point-anchored
// note annotations, in points.
const noteIconSize = 18.0

// PDFStamper queues markup and stamps it into a copy of the target PDF via
// pdfcpu. The target file itself is never modified.
type PDFStamper struct {
	targetPath string
	bounds     []geom.Rect
	queued     map[int][]model.AnnotationRenderer
}

var _ Stamper = (*PDFStamper)(nil)

// NewPDFStamper creates a stamper for the given target document. The target
// is validated with pdfcpu before any markup is accepted.
func NewPDFStamper(target *PDFDocument) (*PDFStamper, error) {
	if err := api.ValidateFile(target.Path(), nil); err != nil {
		return nil, fmt.Errorf("validating %s: %w", target.Path(), err)
	}

	bounds := make([]geom.Rect, target.PageCount())
	for i := range bounds {
		bounds[i] = target.PageBounds(i)
	}
	return &PDFStamper{
		targetPath: target.Path(),
		bounds:     bounds,
		queued:     make(map[int][]model.AnnotationRenderer),
	}, nil
}

// Add converts the markup to a pdfcpu annotation and queues it for Save.
func (s *PDFStamper) Add(page int, m Markup) error {
	if page < 0 || page >= len(s.bounds) {
		return fmt.Errorf("page %d out of range", page)
	}
	if m.Box.IsEmpty() {
		return fmt.Errorf("empty bounding box for %s annotation", m.Kind)
	}

	r, err := s.renderer(page, m)
	if err != nil {
		return err
	}
	// pdfcpu pages are 1-based.
	s.queued[page+1] = append(s.queued[page+1], r)
	return nil
}

func (s *PDFStamper) renderer(page int, m Markup) (model.AnnotationRenderer, error) {
	pageH := s.bounds[page].Height
	rect := s.pdfRect(m.Box, pageH)

	mk := model.MarkupAnnotation{
		Annotation: model.Annotation{
			Rect:     rect,
			Contents: m.Content,
			NM:       uuid.NewString(),
		},
		T: m.Title,
	}

	switch m.Kind {
	case KindNote:
		// Point-anchored at the box's top-left corner; the icon extends
		// down and to the right of the anchor point, like a sticky note.
		at := m.Box.TopLeft()
		icon := types.RectForWidthAndHeight(at.X, pageH-at.Y-noteIconSize, noteIconSize, noteIconSize)
		mk.Rect = *icon
		mk.SubType = model.AnnText
		return model.TextAnnotation{MarkupAnnotation: mk}, nil
	case KindFreeText:
		mk.SubType = model.AnnFreeText
		return model.FreeTextAnnotation{MarkupAnnotation: mk}, nil
	case KindDrawing:
		// Freehand stroke geometry is not carried over; the drawing becomes
		// a rectangle spanning its bounding box.
		mk.SubType = model.AnnSquare
		return model.SquareAnnotation{MarkupAnnotation: mk}, nil
	case KindHighlight, KindUnderline, KindStrikeOut, KindSquiggly:
		mk.SubType = model.AnnHighLight
		return model.HighlightAnnotation{TextMarkupAnnotation: model.TextMarkupAnnotation{MarkupAnnotation: mk}}, nil
	default:
		return nil, fmt.Errorf("unsupported markup kind %q", m.Kind)
	}
}

func (s *PDFStamper) pdfRect(box geom.Rect, pageH float64) types.Rectangle {
	return *types.NewRectangle(box.Left(), pageH-box.Bottom(), box.Right(), pageH-box.Top())
}

// Save writes a copy of the target with all queued markup to path.
func (s *PDFStamper) Save(path string) error {
	if len(s.queued) == 0 {
		// Nothing to stamp; the output is a plain copy of the target.
		data, err := os.ReadFile(s.targetPath)
		if err != nil {
			return fmt.Errorf("reading target: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	if err := api.AddAnnotationsMapFile(s.targetPath, path, s.queued, nil, false); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
