// Package testsupport builds .docx fixtures in memory for tests.
// Fixtures are generated rather than checked in so each test states the
// exact XML it exercises.
package testsupport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
)

// Entry is one file inside a fixture archive.
type Entry struct {
	Name string
	Body string
}

// fixtureTime keeps fixture archives byte-stable across runs.
var fixtureTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// BuildZip writes entries, in order, into a deflated zip archive.
func BuildZip(entries ...Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: fixtureTime})
		if err != nil {
			return nil, fmt.Errorf("testsupport: create %s: %w", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			return nil, fmt.Errorf("testsupport: write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("testsupport: close: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildDocx returns a minimal .docx whose body is the given paragraphs and
// tables. Extra entries (headers, footers) are appended after the main part.
func BuildDocx(t testing.TB, body string, extra ...Entry) []byte {
	t.Helper()

	entries := []Entry{
		{Name: "[Content_Types].xml", Body: contentTypes},
		{Name: "_rels/.rels", Body: rootRels},
		{Name: "word/document.xml", Body: Document(body)},
	}
	entries = append(entries, extra...)

	data, err := BuildZip(entries...)
	if err != nil {
		t.Fatalf("build docx: %v", err)
	}
	return data
}

// Document wraps body XML in a w:document root.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr></w:body></w:document>`
}

// Header wraps body XML in a w:hdr root.
func Header(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + body + `</w:hdr>`
}

// Paragraph returns a paragraph with one plain run per text.
// Passing several texts simulates Word splitting a placeholder across runs.
func Paragraph(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, t := range texts {
		b.WriteString("<w:r><w:t>" + t + "</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

// BoldParagraph returns a paragraph with a single bold run.
func BoldParagraph(text string) string {
	return `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>` + text + `</w:t></w:r></w:p>`
}

// Heading returns a paragraph styled HeadingN.
func Heading(level int, text string) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r><w:t>%s</w:t></w:r></w:p>`, level, text)
}

// Table returns a table with one plain paragraph per cell.
func Table(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="4000" w:type="dxa"/></w:tcPr>` + Paragraph(cell) + `</w:tc>`)
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// InvoiceBody is the body of the invoice fixture. It uses every record
// placeholder, splits two of them across runs, and lays amounts out in a table.
func InvoiceBody() string {
	return Heading(1, "Invoice {invoiceID}") +
		Paragraph("Billed to: ", "{person", "Name}") +
		Paragraph("Event: {eventName} ({eventID}) on {eventDate}") +
		Table(
			[]string{"Item", "Amount"},
			[]string{"Salary", "{salary}"},
			[]string{"Travel", "{travelExpenses}"},
			[]string{"Car", "{carExpenses}"},
			[]string{"Parking", "{parkingExpenses}"},
		) +
		BoldParagraph("Total: {total}") +
		Paragraph("Issued ", "{", "invoiceDate", "}")
}

// InvoiceTemplate returns the invoice fixture with a header part.
func InvoiceTemplate(t testing.TB) []byte {
	t.Helper()
	return BuildDocx(t, InvoiceBody(),
		Entry{Name: "word/header1.xml", Body: Header(Paragraph("Ref {invoiceID}"))},
		Entry{Name: "word/styles.xml", Body: `<?xml version="1.0" encoding="UTF-8"?><w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`},
	)
}

var textContent = regexp.MustCompile(`(<w:t(?:\s[^>]*)?>)[^<]*(</w:t>)`)

// StripText blanks every <w:t> content and normalises the opening tag, so
// two filled documents compare equal iff their structure is identical.
func StripText(xml string) string {
	return textContent.ReplaceAllString(xml, "<w:t></w:t>")
}

// ReadEntries returns every entry of a zip archive keyed by name.
func ReadEntries(t testing.TB, data []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		_ = rc.Close()
		out[f.Name] = buf.String()
	}
	return out
}

// EntryNames returns archive entry names in stored order.
func EntryNames(t testing.TB, data []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}
