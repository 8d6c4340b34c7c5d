// Package goquery extracts tables from HTML pages using goquery.
package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/xconnector"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxColspan bounds colspan expansion of malformed cells.
const maxColspan = 64

// Ensure TableParser implements xconnector.TableParser at compile time.
var _ xconnector.TableParser = (*TableParser)(nil)

// TableParser extracts every table of a page, nested tables included, in
// document order.
//
// A table's header is its first thead row, or else its first row when that
// row holds only th cells. Cells spanning several columns are repeated.
// Each table is labelled with a heading taken from, in order: its caption,
// the th of the row enclosing it when nested in another table, or the
// nearest preceding h1-h6 or panel heading.
type TableParser struct{}

// NewTableParser creates a new TableParser.
func NewTableParser() *TableParser {
	return &TableParser{}
}

// Parse returns the tables of an HTML document.
func (p *TableParser) Parse(htmlContent string) ([]xconnector.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, xconnector.Errorf(xconnector.EINVALID, "failed to parse HTML: %v", err)
	}

	var tables []xconnector.RawTable
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		tables = append(tables, parseTable(sel))
	})
	return tables, nil
}

func parseTable(sel *goquery.Selection) xconnector.RawTable {
	table := sel.Get(0)
	t := xconnector.RawTable{Heading: tableHeading(sel)}

	headerSet := false
	sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if tr.Closest("table").Get(0) != table {
			return
		}
		cells, allTH := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		inHead := tr.Parent().Is("thead")
		switch {
		case inHead && !headerSet:
			t.Header = cells
			headerSet = true
		case inHead:
		case !headerSet && len(t.Rows) == 0 && allTH && len(cells) > 1:
			t.Header = cells
			headerSet = true
		default:
			t.Rows = append(t.Rows, cells)
		}
	})
	return t
}

// rowCells returns the text of a row's cells with colspans expanded, and
// whether every cell is a th.
func rowCells(tr *goquery.Selection) ([]string, bool) {
	var cells []string
	allTH := true
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		if !cell.Is("th") {
			allTH = false
		}
		text := nodeText(cell.Get(0))
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = min(n, maxColspan)
			}
		}
		for range span {
			cells = append(cells, text)
		}
	})
	return cells, allTH
}

func tableHeading(sel *goquery.Selection) string {
	if caption := sel.ChildrenFiltered("caption"); caption.Length() > 0 {
		if text := nodeText(caption.Get(0)); text != "" {
			return text
		}
	}
	if text := enclosingRowHeading(sel.Get(0)); text != "" {
		return text
	}
	return precedingHeading(sel.Get(0))
}

// enclosingRowHeading returns the th label of the row holding a nested
// table, or of the heading-only row just above it.
func enclosingRowHeading(n *html.Node) string {
	var td *html.Node
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if p.DataAtom == atom.Td {
			td = p
			break
		}
		if p.DataAtom == atom.Table || p.DataAtom == atom.Body {
			return ""
		}
	}
	if td == nil || td.Parent == nil || td.Parent.DataAtom != atom.Tr {
		return ""
	}
	tr := td.Parent
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Th {
			return nodeText(c)
		}
	}
	for prev := tr.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type != html.ElementNode {
			continue
		}
		if prev.DataAtom == atom.Tr && onlyTH(prev) {
			return nodeText(prev)
		}
		break
	}
	return ""
}

func onlyTH(tr *html.Node) bool {
	found := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom != atom.Th {
			return false
		}
		found = true
	}
	return found
}

// precedingHeading walks back through the previous siblings of the table
// and of its ancestors until it meets a heading. Meeting another table
// first means the table has no heading of its own.
func precedingHeading(n *html.Node) string {
	for cur := n; cur != nil && cur.DataAtom != atom.Body; cur = cur.Parent {
		for prev := cur.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if prev.Type != html.ElementNode {
				continue
			}
			if isHeading(prev) {
				return headingText(prev)
			}
			if h := lastHeading(prev); h != nil {
				return headingText(h)
			}
			if prev.DataAtom == atom.Table || containsTable(prev) {
				return ""
			}
		}
	}
	return ""
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "class" && hasClass(a.Val, "panel-heading") {
			return true
		}
	}
	return false
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

// lastHeading returns the last heading inside n in document order.
func lastHeading(n *html.Node) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if isHeading(c) {
				found = c
				continue
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return found
}

func containsTable(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Table || containsTable(c)) {
			return true
		}
	}
	return false
}

// headingText prefers the strong part of a heading, which carries the
// label on panel headings that also hold counters or links.
func headingText(n *html.Node) string {
	var strong *html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil && strong == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Strong {
				strong = c
				return
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	if strong != nil {
		if text := nodeText(strong); text != "" {
			return text
		}
	}
	return nodeText(n)
}

// nodeText returns the text content of n with line breaks and block
// boundaries turned into spaces and whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
			return
		case html.ElementNode:
			switch c.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Br:
				b.WriteByte(' ')
				return
			}
		}
		block := c.Type == html.ElementNode && isBlock(c.DataAtom)
		if block {
			b.WriteByte(' ')
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Div, atom.P, atom.Li, atom.Ul, atom.Ol, atom.Table, atom.Tr, atom.Td, atom.Th, atom.Pre, atom.Dd, atom.Dt:
		return true
	}
	return false
}
