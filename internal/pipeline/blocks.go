package pipeline

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrExtract indicates the document XML could not be read into blocks.
var ErrExtract = errors.New("document extraction failed")

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// BlockKind distinguishes paragraphs from tables.
type BlockKind int

const (
	ParagraphBlock BlockKind = iota
	TableBlock
)

// Run is a span of text sharing one set of character formats.
// Text may contain '\t' for tabs and '\n' for line breaks.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Strike bool
}

// Cell is one table cell. Span is the number of grid columns it covers.
type Cell struct {
	Paragraphs []Block
	Span       int
}

// Block is a top-level body element.
type Block struct {
	Kind  BlockKind
	Level int // heading level 1-6, 0 for body text
	Runs  []Run
	Rows  [][]Cell
}

// Text returns the plain text of a paragraph block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// ExtractBlocks reads the body of a word/document.xml part.
// Elements outside the WordprocessingML namespace (drawings, math, VML)
// are skipped, as are deleted revisions and text boxes.
func ExtractBlocks(documentXML []byte) ([]Block, error) {
	dec := xml.NewDecoder(bytes.NewReader(documentXML))

	var blocks []Block
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtract, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Space != wordNS {
			continue
		}

		switch se.Name.Local {
		case "p":
			b, err := readParagraph(dec)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtract, err)
			}
			blocks = append(blocks, b)
		case "tbl":
			b, err := readTable(dec)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtract, err)
			}
			blocks = append(blocks, b)
		}
	}

	return blocks, nil
}

// skipped lists elements whose content never reaches the preview.
var skipped = map[string]bool{
	"del":               true,
	"moveFrom":          true,
	"txbxContent":       true,
	"drawing":           true,
	"pict":              true,
	"object":            true,
	"instrText":         true,
	"delText":           true,
	"footnoteReference": true,
	"endnoteReference":  true,
}

func readParagraph(dec *xml.Decoder) (Block, error) {
	b := Block{Kind: ParagraphBlock}

	for {
		tok, err := dec.Token()
		if err != nil {
			return b, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS || skipped[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return b, err
				}
				continue
			}
			switch t.Name.Local {
			case "pStyle":
				b.Level = headingLevel(attr(t, "val"))
			case "rPr":
				// Paragraph mark properties, not a run.
				if err := dec.Skip(); err != nil {
					return b, err
				}
			case "r":
				r, err := readRun(dec)
				if err != nil {
					return b, err
				}
				if r.Text != "" {
					b.Runs = append(b.Runs, r)
				}
			}
		case xml.EndElement:
			if t.Name.Space == wordNS && t.Name.Local == "p" {
				return b, nil
			}
		}
	}
}

func readRun(dec *xml.Decoder) (Run, error) {
	var (
		r    Run
		text strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return r, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS || skipped[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return r, err
				}
				continue
			}
			switch t.Name.Local {
			case "b":
				r.Bold = toggle(t)
			case "i":
				r.Italic = toggle(t)
			case "strike", "dstrike":
				r.Strike = toggle(t)
			case "t":
				s, err := readText(dec)
				if err != nil {
					return r, err
				}
				text.WriteString(s)
			case "tab":
				text.WriteByte('\t')
			case "br", "cr":
				text.WriteByte('\n')
			case "noBreakHyphen":
				text.WriteByte('-')
			}
		case xml.EndElement:
			if t.Name.Space == wordNS && t.Name.Local == "r" {
				r.Text = text.String()
				return r, nil
			}
		}
	}
}

func readText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// readTable collects rows of cells. Nested tables are flattened into the
// enclosing cell's paragraphs.
func readTable(dec *xml.Decoder) (Block, error) {
	b := Block{Kind: TableBlock}
	var cell *Cell

	for {
		tok, err := dec.Token()
		if err != nil {
			return b, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS || skipped[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return b, err
				}
				continue
			}
			switch t.Name.Local {
			case "tr":
				b.Rows = append(b.Rows, nil)
			case "tc":
				if len(b.Rows) == 0 {
					b.Rows = append(b.Rows, nil)
				}
				row := &b.Rows[len(b.Rows)-1]
				*row = append(*row, Cell{Span: 1})
				cell = &(*row)[len(*row)-1]
			case "gridSpan":
				if cell != nil {
					if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
						cell.Span = n
					}
				}
			case "p":
				p, err := readParagraph(dec)
				if err != nil {
					return b, err
				}
				if cell != nil {
					cell.Paragraphs = append(cell.Paragraphs, p)
				}
			case "tbl":
				nested, err := readTable(dec)
				if err != nil {
					return b, err
				}
				if cell != nil {
					for _, row := range nested.Rows {
						for _, c := range row {
							cell.Paragraphs = append(cell.Paragraphs, c.Paragraphs...)
						}
					}
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tc":
				cell = nil
			case "tbl":
				return b, nil
			}
		}
	}
}

// headingLevel maps a paragraph style id to a heading level.
func headingLevel(style string) int {
	if style == "Title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "Heading"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}

// toggle reads an on/off property such as <w:b/> or <w:b w:val="0"/>.
func toggle(se xml.StartElement) bool {
	switch attr(se, "val") {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
