package engine

import (
	"fmt"
	"unicode/utf16"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"

	"github.com/docuflow/annoport/internal/geom"
)

// PDFDocument is a read-only Document over a PDF file, backed by the tabula
// native reader. Text runs come from content-stream extraction; markup
// objects are read from each page's Annots array.
type PDFDocument struct {
	path      string
	r         *reader.Reader
	pages     []*pages.Page
	pageDicts []core.Dict
	bounds    []geom.Rect
}

var _ Document = (*PDFDocument)(nil)

// OpenPDF opens and validates a PDF file. Encrypted and zero-page documents
// are rejected up front.
func OpenPDF(path string) (*PDFDocument, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	d := &PDFDocument{path: path, r: r}
	if err := d.init(); err != nil {
		r.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

func (d *PDFDocument) init() error {
	if d.r.Trailer().Get("Encrypt") != nil {
		return ErrEncrypted
	}

	count, err := d.r.PageCount()
	if err != nil {
		return fmt.Errorf("page count: %w", err)
	}
	if count == 0 {
		return ErrNoPages
	}

	d.pages = make([]*pages.Page, count)
	d.bounds = make([]geom.Rect, count)
	for i := 0; i < count; i++ {
		p, err := d.r.GetPage(i)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		w, err := p.Width()
		if err != nil {
			return fmt.Errorf("page %d width: %w", i+1, err)
		}
		h, err := p.Height()
		if err != nil {
			return fmt.Errorf("page %d height: %w", i+1, err)
		}
		d.pages[i] = p
		d.bounds[i] = geom.NewRect(0, 0, w, h)
	}

	// tabula's Page does not expose the raw page dictionary, so walk the
	// page tree once more to reach each page's Annots array.
	dicts, err := d.collectPageDicts()
	if err != nil {
		return fmt.Errorf("page tree: %w", err)
	}
	if len(dicts) != count {
		return fmt.Errorf("page tree lists %d pages, reader reports %d", len(dicts), count)
	}
	d.pageDicts = dicts

	return nil
}

// Close releases the underlying file handle.
func (d *PDFDocument) Close() error {
	return d.r.Close()
}

// Path returns the file the document was opened from.
func (d *PDFDocument) Path() string {
	return d.path
}

func (d *PDFDocument) PageCount() int {
	return len(d.pages)
}

func (d *PDFDocument) PageBounds(page int) geom.Rect {
	return d.bounds[page]
}

// TextRuns extracts the page's positioned text fragments and converts them
// to top-down coordinates.
func (d *PDFDocument) TextRuns(page int) ([]TextRun, error) {
	frags, err := d.r.ExtractTextFragments(d.pages[page])
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	pageH := d.bounds[page].Height
	runs := make([]TextRun, 0, len(frags))
	for _, f := range frags {
		runs = append(runs, TextRun{
			Text: f.Text,
			Box:  geom.NewRect(f.X, pageH-(f.Y+f.Height), f.Width, f.Height),
		})
	}
	return runs, nil
}

// Markups reads the page's annotation dictionaries. Entries that cannot be
// parsed are dropped; a malformed annotation never fails the page.
func (d *PDFDocument) Markups(page int) ([]Markup, error) {
	annotsObj := d.pageDicts[page].Get("Annots")
	if annotsObj == nil {
		return nil, nil
	}
	resolved, err := d.r.Resolve(annotsObj)
	if err != nil {
		return nil, fmt.Errorf("resolving Annots: %w", err)
	}
	arr, ok := resolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("Annots is %T, expected array", resolved)
	}

	var out []Markup
	for _, el := range arr {
		m, ok := d.parseAnnot(el, page)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (d *PDFDocument) parseAnnot(obj core.Object, page int) (Markup, bool) {
	resolved, err := d.r.Resolve(obj)
	if err != nil {
		return Markup{}, false
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return Markup{}, false
	}

	subtype, ok := dict.GetName("Subtype")
	if !ok {
		return Markup{}, false
	}

	rectObj, err := d.r.Resolve(dict.Get("Rect"))
	if err != nil {
		return Markup{}, false
	}
	rectArr, ok := rectObj.(core.Array)
	if !ok || len(rectArr) != 4 {
		return Markup{}, false
	}
	var c [4]float64
	for i, el := range rectArr {
		v, ok := numeric(el)
		if !ok {
			return Markup{}, false
		}
		c[i] = v
	}
	// Rect corners may come in any order.
	llx, urx := min(c[0], c[2]), max(c[0], c[2])
	lly, ury := min(c[1], c[3]), max(c[1], c[3])
	pageH := d.bounds[page].Height

	return Markup{
		Kind:    kindForSubtype(subtype),
		Page:    page,
		Box:     geom.NewRect(llx, pageH-ury, urx-llx, ury-lly),
		Content: d.stringEntry(dict, "Contents"),
		Title:   d.stringEntry(dict, "T"),
	}, true
}

func (d *PDFDocument) stringEntry(dict core.Dict, key string) string {
	obj := dict.Get(key)
	if obj == nil {
		return ""
	}
	resolved, err := d.r.Resolve(obj)
	if err != nil {
		return ""
	}
	s, ok := resolved.(core.String)
	if !ok {
		return ""
	}
	return decodePDFString(string(s))
}

// collectPageDicts walks the catalog's page tree depth-first, returning leaf
// page dictionaries in document order.
func (d *PDFDocument) collectPageDicts() ([]core.Dict, error) {
	catalog, err := d.r.GetCatalog()
	if err != nil {
		return nil, err
	}
	rootObj, err := d.r.Resolve(catalog.Get("Pages"))
	if err != nil {
		return nil, err
	}
	root, ok := rootObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog Pages is %T, expected dict", rootObj)
	}

	var out []core.Dict
	if err := d.walkPageTree(root, &out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *PDFDocument) walkPageTree(node core.Dict, out *[]core.Dict, depth int) error {
	if depth > 64 {
		return fmt.Errorf("page tree deeper than %d levels", 64)
	}

	kidsObj, err := d.r.Resolve(node.Get("Kids"))
	if err != nil {
		return err
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return fmt.Errorf("Kids is %T, expected array", kidsObj)
	}

	for _, kid := range kids {
		kidObj, err := d.r.Resolve(kid)
		if err != nil {
			return err
		}
		kidDict, ok := kidObj.(core.Dict)
		if !ok {
			return fmt.Errorf("page tree kid is %T, expected dict", kidObj)
		}
		typ, _ := kidDict.GetName("Type")
		if typ == "Pages" {
			if err := d.walkPageTree(kidDict, out, depth+1); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, kidDict)
	}
	return nil
}

func kindForSubtype(subtype core.Name) Kind {
	switch subtype {
	case "Text":
		return KindNote
	case "FreeText":
		return KindFreeText
	case "Ink":
		return KindDrawing
	case "Highlight":
		return KindHighlight
	case "Underline":
		return KindUnderline
	case "StrikeOut":
		return KindStrikeOut
	case "Squiggly":
		return KindSquiggly
	default:
		return KindUnknown
	}
}

func numeric(obj core.Object) (float64, bool) {
	switch v := obj.(type) {
	case core.Int:
		return float64(v), true
	case core.Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// decodePDFString converts a raw PDF text string to UTF-8. Strings with a
// UTF-16BE byte-order mark are decoded; everything else is assumed to be
// close enough to Latin-1 to pass through.
func decodePDFString(s string) string {
	b := []byte(s)
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u16 := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u16 = append(u16, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u16))
	}
	return s
}
