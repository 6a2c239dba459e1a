// Package engine defines the narrow document-access capability the transfer
// pipeline consumes: enumerating pages, positioned text runs, and markup
// objects, plus queueing new markup for a fresh output file.
//
// All geometry crossing this interface is normalized to a top-left origin
// (y grows down the page), so reading order and the coordinates agree.
// Adapters for real file formats convert from native coordinates.
package engine

import (
	"errors"

	"github.com/docuflow/annoport/internal/geom"
)

var (
	// ErrEncrypted is returned when a document cannot be processed because
	// it is encrypted.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrNoPages is returned when a document contains no pages.
	ErrNoPages = errors.New("document has no pages")
)

// Kind identifies a markup object type.
type Kind int

const (
	KindUnknown Kind = iota
	KindNote
	KindFreeText
	KindDrawing
	KindHighlight
	KindUnderline
	KindStrikeOut
	KindSquiggly
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindFreeText:
		return "free-text"
	case KindDrawing:
		return "drawing"
	case KindHighlight:
		return "highlight"
	case KindUnderline:
		return "underline"
	case KindStrikeOut:
		return "strikeout"
	case KindSquiggly:
		return "squiggly"
	default:
		return "unknown"
	}
}

// TextRun is a positioned piece of text, reported in engine reading order.
type TextRun struct {
	Text string
	Box  geom.Rect
}

// Markup is a positioned markup object on a page.
type Markup struct {
	Kind    Kind
	Page    int // 0-based
	Box     geom.Rect
	Content string
	Title   string
}

// Document is a read-only view of a paginated document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageBounds returns the page rectangle for the given 0-based page.
	PageBounds(page int) geom.Rect

	// TextRuns returns the page's text runs in engine reading order.
	TextRuns(page int) ([]TextRun, error)

	// Markups returns the page's markup objects in engine order.
	Markups(page int) ([]Markup, error)
}

// Stamper queues new markup objects and persists them.
//
// Save writes the accumulated markup into a fresh output file; the documents
// the markup was derived from are never modified in place.
type Stamper interface {
	Add(page int, m Markup) error
	Save(path string) error
}
