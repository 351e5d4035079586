package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// MainPart is the entry every Word document must contain.
const MainPart = "word/document.xml"

// MaxPartSize caps a single decompressed XML part (32MB).
const MaxPartSize = 32 << 20

// part is a scanned content part that contains at least one placeholder.
type part struct {
	xml   string
	nodes []textNode
	paras []paragraph
}

// Template is a parsed, read-only .docx template.
// It is safe for concurrent use; Merge never mutates it.
type Template struct {
	data         []byte
	parts        map[string]*part
	placeholders []string
}

// ParseTemplate validates a .docx archive and builds its placeholder schema.
// Returns an error wrapping ErrMalformedTemplate if data is not a zip, lacks
// word/document.xml, or contains invalid placeholder syntax.
func ParseTemplate(data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrMalformedTemplate, err)
	}

	t := &Template{
		data:  data,
		parts: make(map[string]*part),
	}
	seen := make(map[string]bool)
	hasMain := false

	for _, f := range zr.File {
		if f.Name == MainPart {
			hasMain = true
		}
		if !isContentPart(f.Name) {
			continue
		}

		raw, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
		}
		xml := string(raw)

		nodes, err := scanTextNodes(xml)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		paras, err := groupParagraphs(xml, nodes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}

		found := false
		for _, p := range paras {
			for _, m := range p.matches {
				found = true
				if !seen[m.name] {
					seen[m.name] = true
					t.placeholders = append(t.placeholders, m.name)
				}
			}
		}
		if found {
			t.parts[f.Name] = &part{xml: xml, nodes: nodes, paras: paras}
		}
	}

	if !hasMain {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedTemplate, MainPart)
	}

	sort.Strings(t.placeholders)
	return t, nil
}

// Placeholders returns the sorted, de-duplicated placeholder names.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// Missing returns the placeholders that have no entry in values, sorted.
func (t *Template) Missing(values map[string]string) []string {
	var missing []string
	for _, name := range t.placeholders {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReadPart returns the decompressed contents of one archive entry.
func ReadPart(doc []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrMalformedTemplate, err)
	}
	for _, f := range zr.File {
		if f.Name == name {
			return readEntry(f)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
}

// isContentPart reports whether an entry may carry user-visible run text.
func isContentPart(name string) bool {
	dir, file := path.Split(name)
	if dir != "word/" || !strings.HasSuffix(file, ".xml") {
		return false
	}
	switch {
	case file == "document.xml", file == "footnotes.xml", file == "endnotes.xml":
		return true
	case strings.HasPrefix(file, "header"), strings.HasPrefix(file, "footer"):
		return true
	}
	return false
}

// readEntry decompresses a zip entry, refusing parts above MaxPartSize.
func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxPartSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, MaxPartSize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > MaxPartSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, MaxPartSize)
	}
	return data, nil
}
