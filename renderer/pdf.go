package renderer

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pageWidth  = 190.0 // A4 width minus margins
	pageBottom = 297.0 - 10.0
	lineHeight = 5.0
	font       = "Helvetica"
	fontSize   = 9.0
)

// PDF converts markdown to an A4 PDF document written to w.
func PDF(w io.Writer, markdown, title string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont(font, "", fontSize)

	source := []byte(markdown)
	doc := gfm.Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{
		pdf:    pdf,
		source: source,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		return fmt.Errorf("cannot render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("cannot write pdf: %w", err)
	}
	return nil
}

type pdfRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	tr     func(string) string // utf-8 to the core fonts encoding
	bold   bool
	italic bool
	lists  int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(font, style, fontSize)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Heading:
		if entering {
			r.pdf.Ln(4)
			r.pdf.SetFont(font, "B", 16-2*float64(min(n.Level, 4)))
		} else {
			r.pdf.Ln(7)
			r.updateFont()
		}
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(lineHeight + 1)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(lineHeight, r.tr(string(n.Segment.Value(r.source))))
			if n.SoftLineBreak() {
				r.pdf.Write(lineHeight, " ")
			}
		}
	case *ast.Emphasis:
		if n.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.List:
		if entering {
			r.lists++
		} else {
			r.lists--
			if r.lists == 0 {
				r.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			r.pdf.SetX(10 + float64(r.lists)*5)
			r.pdf.Write(lineHeight, "- ")
		}
	case *ast.TextBlock:
		if !entering {
			r.pdf.Ln(lineHeight)
		}
	case *extast.Table:
		if entering {
			r.table(n)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) cells(row ast.Node) []string {
	var res []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		res = append(res, r.tr(r.plain(c)))
	}
	return res
}

// plain returns the text of n without markup.
func (r *pdfRenderer) plain(n ast.Node) string {
	var s []byte
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			s = append(s, t.Segment.Value(r.source)...)
		}
		return ast.WalkContinue, nil
	})
	return string(s)
}

func (r *pdfRenderer) table(n *extast.Table) {
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		rows = append(rows, r.cells(row))
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	cols := len(rows[0])

	// Columns are as wide as their content, scaled down to fit the page.
	r.pdf.SetFont(font, "", fontSize-1)
	widths := make([]float64, cols)
	var total float64
	for _, row := range rows {
		for j := 0; j < cols && j < len(row); j++ {
			widths[j] = max(widths[j], r.pdf.GetStringWidth(row[j])+3)
		}
	}
	for _, w := range widths {
		total += w
	}
	if total > pageWidth {
		for j := range widths {
			widths[j] *= pageWidth / total
		}
	}

	r.pdf.Ln(1)
	for i, row := range rows {
		if r.pdf.GetY()+lineHeight > pageBottom {
			r.pdf.AddPage()
		}
		style, fill := "", false
		if i == 0 {
			style, fill = "B", true
			r.pdf.SetFillColor(230, 230, 230)
		}
		r.pdf.SetFont(font, style, fontSize-1)
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			align := "L"
			if j < len(n.Alignments) && n.Alignments[j] == extast.AlignRight {
				align = "R"
			}
			r.pdf.CellFormat(widths[j], lineHeight, cell, "1", 0, align, fill, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(3)
	r.updateFont()
}
