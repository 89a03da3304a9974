package render

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

const placeholderClass = "placeholder"

// DOMSink renders rows into an element of a parsed HTML document.
// Table bodies get <tr>/<td> rows, any other element gets <div>/<span> rows.
type DOMSink struct {
	selection *goquery.Selection
	rowTag    string
	cellTag   string
	columns   int
}

// NewDOMSink wraps selection, choosing row markup from its element name.
func NewDOMSink(selection *goquery.Selection, columns int) *DOMSink {
	sink := &DOMSink{
		selection: selection,
		rowTag:    "div",
		cellTag:   "span",
		columns:   columns,
	}
	switch goquery.NodeName(selection) {
	case "tbody", "table", "thead":
		sink.rowTag, sink.cellTag = "tr", "td"
	case "ul", "ol":
		sink.rowTag, sink.cellTag = "li", "span"
	}
	return sink
}

func (s *DOMSink) Replace(rows []Row) {
	s.selection.Empty()
	for _, row := range rows {
		rowSelection := s.appendChild(s.selection, s.rowTag)
		if row.Class != "" {
			rowSelection.AddClass(row.Class)
		}
		for i, cell := range row.Cells {
			cellSelection := s.appendChild(rowSelection, s.cellTag)
			if i == 0 && row.Href != "" {
				link := s.appendChild(cellSelection, "a")
				link.SetAttr("href", row.Href)
				link.SetText(cell)
				continue
			}
			cellSelection.SetText(cell)
		}
	}
}

func (s *DOMSink) ShowMessage(text string) {
	s.selection.Empty()

	if s.rowTag == "tr" {
		row := s.appendChild(s.selection, "tr")
		row.AddClass(placeholderClass)
		cell := s.appendChild(row, "td")
		if s.columns > 1 {
			cell.SetAttr("colspan", strconv.Itoa(s.columns))
		}
		cell.SetText(text)
		return
	}

	tag := "p"
	if s.rowTag == "li" {
		tag = "li"
	}
	message := s.appendChild(s.selection, tag)
	message.AddClass(placeholderClass)
	message.SetText(text)
}

// Text returns the visible text of the sink element.
func (s *DOMSink) Text() string {
	return s.selection.Text()
}

func (s *DOMSink) appendChild(parent *goquery.Selection, tag string) *goquery.Selection {
	parent.AppendHtml("<" + tag + "></" + tag + ">")
	return parent.Children().Last()
}
