package docx

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder delimiters (docxtemplater defaults).
const (
	openDelim  = '{'
	closeDelim = '}'
)

var placeholderName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// textNode locates one <w:t> element inside a part.
type textNode struct {
	tagStart int // offset of '<' in the opening tag
	tagEnd   int // offset just past '>' of the opening tag
	end      int // offset of '<' in the closing tag
	para     int // enclosing paragraph, unique negative id when outside one
}

// match is a placeholder within a paragraph's concatenated text.
type match struct {
	start int // offset of the opening delimiter
	end   int // offset just past the closing delimiter
	name  string
}

// paragraph groups the text nodes sharing one <w:p>.
type paragraph struct {
	nodes   []int
	matches []match
}

// scanTextNodes finds every <w:t> element and the paragraph it belongs to.
// It is a tag-level scan, not a full XML parse: the parts are produced by
// Word and never contain '>' inside attribute values.
func scanTextNodes(xml string) ([]textNode, error) {
	var (
		nodes    []textNode
		stack    []int
		nextPara int
		loose    = -1
	)

	i := 0
	for {
		lt := strings.IndexByte(xml[i:], '<')
		if lt < 0 {
			break
		}
		lt += i

		switch {
		case strings.HasPrefix(xml[lt:], "<!--"):
			end := strings.Index(xml[lt:], "-->")
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated comment at offset %d", ErrMalformedTemplate, lt)
			}
			i = lt + end + 3
			continue
		case strings.HasPrefix(xml[lt:], "<?"), strings.HasPrefix(xml[lt:], "<!"):
			end := strings.IndexByte(xml[lt:], '>')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated declaration at offset %d", ErrMalformedTemplate, lt)
			}
			i = lt + end + 1
			continue
		}

		gt := strings.IndexByte(xml[lt:], '>')
		if gt < 0 {
			return nil, fmt.Errorf("%w: unterminated tag at offset %d", ErrMalformedTemplate, lt)
		}
		gt += lt
		tag := xml[lt : gt+1]
		closing := strings.HasPrefix(tag, "</")
		selfClosing := strings.HasSuffix(tag, "/>")
		name := tagName(tag)
		i = gt + 1

		switch name {
		case "w:p":
			if selfClosing {
				continue
			}
			if closing {
				if len(stack) == 0 {
					return nil, fmt.Errorf("%w: unbalanced </w:p> at offset %d", ErrMalformedTemplate, lt)
				}
				stack = stack[:len(stack)-1]
				continue
			}
			stack = append(stack, nextPara)
			nextPara++
		case "w:t":
			if closing || selfClosing {
				continue
			}
			end := strings.Index(xml[i:], "</w:t>")
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated <w:t> at offset %d", ErrMalformedTemplate, lt)
			}
			node := textNode{tagStart: lt, tagEnd: i, end: i + end}
			if len(stack) > 0 {
				node.para = stack[len(stack)-1]
			} else {
				node.para = loose
				loose--
			}
			nodes = append(nodes, node)
			i = node.end + len("</w:t>")
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: %d unclosed <w:p>", ErrMalformedTemplate, len(stack))
	}
	return nodes, nil
}

// tagName returns the element name of a tag such as `<w:t xml:space="preserve">`.
func tagName(tag string) string {
	s := strings.TrimPrefix(tag[1:], "/")
	end := strings.IndexAny(s, " \t\r\n/>")
	if end < 0 {
		return s
	}
	return s[:end]
}

// groupParagraphs buckets nodes by paragraph, preserving document order,
// and locates placeholders in each paragraph's text.
func groupParagraphs(xml string, nodes []textNode) ([]paragraph, error) {
	var paras []paragraph
	index := make(map[int]int)

	for i, n := range nodes {
		pi, ok := index[n.para]
		if !ok {
			pi = len(paras)
			index[n.para] = pi
			paras = append(paras, paragraph{})
		}
		paras[pi].nodes = append(paras[pi].nodes, i)
	}

	for pi := range paras {
		var text strings.Builder
		for _, ni := range paras[pi].nodes {
			text.WriteString(xml[nodes[ni].tagEnd:nodes[ni].end])
		}
		matches, err := findPlaceholders(text.String())
		if err != nil {
			return nil, err
		}
		paras[pi].matches = matches
	}

	return paras, nil
}

// findPlaceholders locates {name} tokens in text.
// Unclosed, unopened, and nested delimiters are template errors.
func findPlaceholders(text string) ([]match, error) {
	var matches []match
	open := -1

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case openDelim:
			if open >= 0 {
				return nil, fmt.Errorf("%w: nested %q in %q", ErrMalformedTemplate, openDelim, excerpt(text, open))
			}
			open = i
		case closeDelim:
			if open < 0 {
				return nil, fmt.Errorf("%w: unopened %q in %q", ErrMalformedTemplate, closeDelim, excerpt(text, i))
			}
			name := strings.TrimSpace(text[open+1 : i])
			if !placeholderName.MatchString(name) {
				return nil, fmt.Errorf("%w: invalid placeholder name %q", ErrMalformedTemplate, name)
			}
			matches = append(matches, match{start: open, end: i + 1, name: name})
			open = -1
		}
	}

	if open >= 0 {
		return nil, fmt.Errorf("%w: unclosed %q in %q", ErrMalformedTemplate, openDelim, excerpt(text, open))
	}
	return matches, nil
}

// excerpt returns a short window of text starting at offset for error messages.
func excerpt(text string, offset int) string {
	const width = 30
	end := offset + width
	if end > len(text) {
		end = len(text)
	}
	return text[offset:end]
}
