package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-invoicedoc/internal/testsupport"
)

func invoiceValues() map[string]string {
	return map[string]string{
		"invoiceID":       "2024-42",
		"personName":      "Jane Doe",
		"salary":          "1000",
		"eventID":         "42",
		"eventName":       "Conf",
		"eventDate":       "01-01-2024",
		"travelExpenses":  "50",
		"carExpenses":     "0",
		"parkingExpenses": "20",
		"invoiceDate":     "01-02-2024",
		"total":           "1070",
	}
}

func mustParse(t *testing.T, data []byte) *Template {
	t.Helper()
	tpl, err := ParseTemplate(data)
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	return tpl
}

func TestMerge_FillsEveryPlaceholder(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.InvoiceTemplate(t))

	out, err := tpl.Merge(invoiceValues())
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	entries := testsupport.ReadEntries(t, out)
	doc := entries[MainPart]
	for _, want := range []string{"Jane Doe", "2024-42", "1070", "01-02-2024", "Conf"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.ContainsAny(doc, "{}") {
		t.Errorf("document still contains delimiters:\n%s", doc)
	}
	if !strings.Contains(entries["word/header1.xml"], "Ref 2024-42") {
		t.Errorf("header not filled: %s", entries["word/header1.xml"])
	}

	// The filled document is itself a valid template with no placeholders.
	again := mustParse(t, out)
	if len(again.Placeholders()) != 0 {
		t.Errorf("filled document placeholders = %v, want none", again.Placeholders())
	}
}

func TestMerge_SplitRuns(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.BuildDocx(t, testsupport.Paragraph("Dear ", "{per", "son", "Name}", ", thanks")))

	out, err := tpl.Merge(map[string]string{"personName": "Jane"})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	doc := testsupport.ReadEntries(t, out)[MainPart]
	want := testsupport.Document(`<w:p><w:r><w:t>Dear </w:t></w:r>` +
		`<w:r><w:t xml:space="preserve">Jane</w:t></w:r>` +
		`<w:r><w:t xml:space="preserve"></w:t></w:r>` +
		`<w:r><w:t xml:space="preserve"></w:t></w:r>` +
		`<w:r><w:t>, thanks</w:t></w:r></w:p>`)
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_SeveralPlaceholdersInOneRun(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.BuildDocx(t, testsupport.Paragraph("{a}-{b}{a}")))

	out, err := tpl.Merge(map[string]string{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	doc := testsupport.ReadEntries(t, out)[MainPart]
	if !strings.Contains(doc, `<w:t xml:space="preserve">1-21</w:t>`) {
		t.Errorf("document = %s", doc)
	}
}

func TestMerge_EscapesValues(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.BuildDocx(t, testsupport.Paragraph("{personName}")))

	out, err := tpl.Merge(map[string]string{"personName": `Smith & <Sons>`})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	doc := testsupport.ReadEntries(t, out)[MainPart]
	if !strings.Contains(doc, "Smith &amp; &lt;Sons&gt;") {
		t.Errorf("value not escaped: %s", doc)
	}
	// The escaped value must not open or close elements.
	if _, err := ParseTemplate(out); err != nil {
		t.Errorf("filled document no longer parses: %v", err)
	}
}

func TestMerge_MissingValues(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.InvoiceTemplate(t))
	values := invoiceValues()
	delete(values, "personName")
	delete(values, "eventDate")

	out, err := tpl.Merge(values)
	if out != nil {
		t.Error("Merge() returned bytes on mismatch")
	}
	if !errors.Is(err, ErrUnresolvedPlaceholder) {
		t.Fatalf("Merge() error = %v, want ErrUnresolvedPlaceholder", err)
	}
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Merge() error type = %T, want *MismatchError", err)
	}
	if diff := cmp.Diff([]string{"eventDate", "personName"}, mismatch.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_EmptyValueIsNotMissing(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.BuildDocx(t, testsupport.Paragraph("[{eventName}]")))

	out, err := tpl.Merge(map[string]string{"eventName": ""})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if doc := testsupport.ReadEntries(t, out)[MainPart]; !strings.Contains(doc, "[]") {
		t.Errorf("document = %s", doc)
	}
}

func TestMerge_PreservesStructure(t *testing.T) {
	t.Parallel()

	tpl := mustParse(t, testsupport.InvoiceTemplate(t))

	first := invoiceValues()
	second := invoiceValues()
	second["personName"] = "Richard Roe with a much longer name"
	second["total"] = "99999.99"
	second["eventName"] = "An <Event> & more"

	a, err := tpl.Merge(first)
	if err != nil {
		t.Fatalf("Merge(first) error = %v", err)
	}
	b, err := tpl.Merge(second)
	if err != nil {
		t.Fatalf("Merge(second) error = %v", err)
	}

	if diff := cmp.Diff(testsupport.EntryNames(t, a), testsupport.EntryNames(t, b)); diff != "" {
		t.Errorf("entry names differ (-first +second):\n%s", diff)
	}

	ea, eb := testsupport.ReadEntries(t, a), testsupport.ReadEntries(t, b)
	for name := range ea {
		if diff := cmp.Diff(testsupport.StripText(ea[name]), testsupport.StripText(eb[name])); diff != "" {
			t.Errorf("%s structure differs (-first +second):\n%s", name, diff)
		}
	}
	if ea[MainPart] == eb[MainPart] {
		t.Error("documents for different records are identical")
	}
}

func TestMerge_CopiesUntouchedEntriesRaw(t *testing.T) {
	t.Parallel()

	data := testsupport.InvoiceTemplate(t)
	tpl := mustParse(t, data)

	out, err := tpl.Merge(invoiceValues())
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	in := rawEntries(t, data)
	got := rawEntries(t, out)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml"} {
		if !bytes.Equal(in[name], got[name]) {
			t.Errorf("%s compressed bytes changed", name)
		}
	}
}

func TestMerge_DoesNotMutateTemplate(t *testing.T) {
	t.Parallel()

	data := testsupport.InvoiceTemplate(t)
	original := append([]byte(nil), data...)
	tpl := mustParse(t, data)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tpl.Merge(invoiceValues()); err != nil {
				t.Errorf("Merge() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if !bytes.Equal(original, data) {
		t.Error("template bytes mutated by Merge")
	}
}

func TestMismatchError_Message(t *testing.T) {
	t.Parallel()

	err := &MismatchError{Missing: []string{"a", "b"}}
	if got := err.Error(); got != "unresolved placeholders: a, b" {
		t.Errorf("Error() = %q", got)
	}
}

// rawEntries returns the compressed bytes of each entry.
func rawEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	out := make(map[string][]byte)
	for _, f := range zr.File {
		r, err := f.OpenRaw()
		if err != nil {
			t.Fatalf("open raw %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			t.Fatalf("read raw %s: %v", f.Name, err)
		}
		out[f.Name] = buf.Bytes()
	}
	return out
}
