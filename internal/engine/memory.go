package engine

import (
	"fmt"

	"github.com/docuflow/annoport/internal/geom"
)

// MemoryPage is one page of a MemoryDocument.
type MemoryPage struct {
	Bounds  geom.Rect
	Runs    []TextRun
	Markups []Markup

	// RunsErr and MarkupsErr, when set, are returned by the corresponding
	// accessor to simulate an undecomposable page.
	RunsErr    error
	MarkupsErr error
}

// MemoryDocument is an in-memory Document and Stamper implementation. It
// backs unit tests and synthetic fixtures, keeping the linking and
// relocation logic independent of any real document engine.
type MemoryDocument struct {
	Pages []MemoryPage

	// Added collects markup queued via Add.
	Added []Markup

	// AddErr, when set, makes Add fail, simulating a creation failure.
	AddErr error

	// SaveErr, when set, makes Save fail.
	SaveErr error

	// SavedTo records the path of the last successful Save.
	SavedTo string
}

var (
	_ Document = (*MemoryDocument)(nil)
	_ Stamper  = (*MemoryDocument)(nil)
)

// NewMemoryDocument creates a document from the given pages.
func NewMemoryDocument(pages ...MemoryPage) *MemoryDocument {
	return &MemoryDocument{Pages: pages}
}

func (d *MemoryDocument) PageCount() int {
	return len(d.Pages)
}

func (d *MemoryDocument) PageBounds(page int) geom.Rect {
	return d.Pages[page].Bounds
}

func (d *MemoryDocument) TextRuns(page int) ([]TextRun, error) {
	p := d.Pages[page]
	if p.RunsErr != nil {
		return nil, p.RunsErr
	}
	return p.Runs, nil
}

func (d *MemoryDocument) Markups(page int) ([]Markup, error) {
	p := d.Pages[page]
	if p.MarkupsErr != nil {
		return nil, p.MarkupsErr
	}
	return p.Markups, nil
}

func (d *MemoryDocument) Add(page int, m Markup) error {
	if d.AddErr != nil {
		return d.AddErr
	}
	if page < 0 || page >= len(d.Pages) {
		return fmt.Errorf("page %d out of range", page)
	}
	m.Page = page
	d.Added = append(d.Added, m)
	return nil
}

func (d *MemoryDocument) Save(path string) error {
	if d.SaveErr != nil {
		return d.SaveErr
	}
	d.SavedTo = path
	return nil
}
