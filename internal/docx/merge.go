package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const preserveSpace = ` xml:space="preserve"`

// Merge fills every placeholder with its value and returns a complete .docx.
//
// The schema is checked first: if any placeholder lacks a value, Merge
// returns a *MismatchError and does no work. Only <w:t> contents change;
// every other byte of a content part is preserved, and entries without
// placeholders are copied raw. On any error the returned slice is nil.
func (t *Template) Merge(values map[string]string) ([]byte, error) {
	if missing := t.Missing(values); len(missing) > 0 {
		return nil, &MismatchError{Missing: missing}
	}

	zr, err := zip.NewReader(bytes.NewReader(t.data), int64(len(t.data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(t.data))
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		if p, ok := t.parts[f.Name]; ok {
			err = writeFilled(zw, f, p.render(values))
		} else {
			err = copyRaw(zw, f)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMerge, f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalizing archive: %v", ErrMerge, err)
	}
	return buf.Bytes(), nil
}

// writeFilled writes a rewritten part, keeping the original name and timestamp.
func writeFilled(zw *zip.Writer, f *zip.File, content string) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   zip.Deflate,
		Modified: f.Modified,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content)
	return err
}

// copyRaw copies an entry without recompressing it.
func copyRaw(zw *zip.Writer, f *zip.File) error {
	r, err := f.OpenRaw()
	if err != nil {
		return err
	}
	fh := f.FileHeader
	w, err := zw.CreateRaw(&fh)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

// render rebuilds the part XML with placeholders replaced.
func (p *part) render(values map[string]string) string {
	contents := make([]string, len(p.nodes))
	changed := make([]bool, len(p.nodes))

	for _, para := range p.paras {
		if len(para.matches) == 0 {
			continue
		}
		p.fillParagraph(para, values, contents, changed)
	}

	var b strings.Builder
	b.Grow(len(p.xml))
	last := 0
	for i, n := range p.nodes {
		if !changed[i] {
			continue
		}
		b.WriteString(p.xml[last:n.tagStart])
		b.WriteString(withPreservedSpace(p.xml[n.tagStart:n.tagEnd]))
		b.WriteString(contents[i])
		last = n.end
	}
	b.WriteString(p.xml[last:])
	return b.String()
}

// fillParagraph computes new contents for the nodes of one paragraph.
// A value is written into the node holding its opening delimiter; the rest
// of the placeholder text is removed from that node and the ones after it.
func (p *part) fillParagraph(para paragraph, values map[string]string, contents []string, changed []bool) {
	offset := 0
	mi := 0

	for _, ni := range para.nodes {
		n := p.nodes[ni]
		text := p.xml[n.tagEnd:n.end]
		nodeStart, nodeEnd := offset, offset+len(text)
		offset = nodeEnd

		// Skip matches that ended before this node.
		for mi < len(para.matches) && para.matches[mi].end <= nodeStart {
			mi++
		}
		if mi == len(para.matches) || para.matches[mi].start >= nodeEnd {
			continue
		}

		var b strings.Builder
		pos := nodeStart
		for j := mi; pos < nodeEnd; {
			if j == len(para.matches) || para.matches[j].start >= nodeEnd {
				b.WriteString(text[pos-nodeStart:])
				break
			}
			m := para.matches[j]
			if pos < m.start {
				b.WriteString(text[pos-nodeStart : m.start-nodeStart])
				pos = m.start
			}
			if pos == m.start {
				escape(&b, values[m.name])
			}
			if m.end > nodeEnd {
				break
			}
			pos = m.end
			j++
		}

		contents[ni] = b.String()
		changed[ni] = true
	}
}

// withPreservedSpace adds xml:space="preserve" to a <w:t> opening tag so
// Word keeps leading and trailing spaces of substituted values.
func withPreservedSpace(tag string) string {
	if strings.Contains(tag, "xml:space") {
		return tag
	}
	return "<w:t" + preserveSpace + tag[len("<w:t"):]
}

func escape(b *strings.Builder, s string) {
	_ = xml.EscapeText(b, []byte(s))
}
