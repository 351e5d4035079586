package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// markdownSpecial lists the ASCII punctuation that can start or delimit
// Markdown syntax. Every occurrence in document text is backslash-escaped.
const markdownSpecial = "\\`*_{}[]()<>#+-.!|~&=:"

// ToMarkdown renders blocks as GitHub Flavored Markdown.
// All document text is escaped, so values typed into the invoice can never
// produce links, raw HTML or structure of their own.
func ToMarkdown(blocks []Block) string {
	var parts []string

	for _, b := range blocks {
		var s string
		switch b.Kind {
		case ParagraphBlock:
			s = paragraphMarkdown(b)
		case TableBlock:
			s = tableMarkdown(b)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func paragraphMarkdown(b Block) string {
	text := inlineMarkdown(b.Runs, b.Level > 0)
	if text == "" {
		return ""
	}
	if b.Level > 0 {
		return strings.Repeat("#", b.Level) + " " + text
	}
	return text
}

// inlineMarkdown joins runs, wrapping formatted spans in emphasis markers.
// Adjacent runs with identical formats are merged first so markers never
// abut. A span whose markers would not be read as emphasis is written
// plain. When singleLine is set, line breaks become spaces.
func inlineMarkdown(runs []Run, singleLine bool) string {
	var sb strings.Builder

	runs = mergeRuns(runs)
	for i, r := range runs {
		text := normalizeWhitespace(r.Text, singleLine)
		core := strings.TrimSpace(text)
		if core == "" {
			sb.WriteString(text)
			continue
		}

		lead := text[:strings.Index(text, core)]
		trail := text[len(lead)+len(core):]
		openMark, closeMark := markers(r)

		sb.WriteString(lead)
		if openMark != "" {
			prev, _ := utf8.DecodeLastRuneInString(sb.String())
			next := nextRune(trail, runs[i+1:], singleLine)
			if !flanks(prev, core, next) {
				openMark, closeMark = "", ""
			}
		}
		sb.WriteString(openMark)
		sb.WriteString(escapeLines(core))
		sb.WriteString(closeMark)
		sb.WriteString(trail)
	}

	return trimLines(sb.String())
}

// flanks reports whether emphasis markers around core would open and close
// given the characters written before and after them. Markers next to
// punctuation inside a word are left literal by CommonMark.
func flanks(prev rune, core string, next rune) bool {
	first, _ := utf8.DecodeRuneInString(core)
	last, _ := utf8.DecodeLastRuneInString(core)
	opens := !isPunct(first) || isBoundary(prev)
	closes := !isPunct(last) || isBoundary(next)
	return opens && closes
}

// nextRune returns the first character that follows a span: its trailing
// space, else the start of the next run with text, else utf8.RuneError at
// the end of the line.
func nextRune(trail string, rest []Run, singleLine bool) rune {
	if trail != "" {
		r, _ := utf8.DecodeRuneInString(trail)
		return r
	}
	for _, r := range rest {
		if text := normalizeWhitespace(r.Text, singleLine); text != "" {
			c, _ := utf8.DecodeRuneInString(text)
			return c
		}
	}
	return utf8.RuneError
}

func isBoundary(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r) || isPunct(r)
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// mergeRuns coalesces neighbouring runs that share formatting.
func mergeRuns(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if n := len(out); n > 0 && sameFormat(out[n-1], r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameFormat(a, b Run) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Strike == b.Strike
}

// markers returns the emphasis delimiters for a run, innermost last.
func markers(r Run) (openMark, closeMark string) {
	if r.Strike {
		openMark += "~~"
	}
	if r.Bold {
		openMark += "**"
	}
	if r.Italic {
		openMark += "*"
	}
	for i := len(openMark) - 1; i >= 0; i-- {
		closeMark += string(openMark[i])
	}
	return openMark, closeMark
}

// normalizeWhitespace turns tabs into spaces and, for single-line output,
// line breaks too.
func normalizeWhitespace(s string, singleLine bool) string {
	s = strings.ReplaceAll(s, "\t", " ")
	if singleLine {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	return s
}

// escapeLines escapes Markdown punctuation on every line of s.
func escapeLines(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(markdownSpecial, c) >= 0 {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// trimLines strips leading and trailing spaces of every line so indentation
// never turns into a code block and trailing spaces never into a break.
// Blank lines are dropped so a single paragraph stays a single paragraph.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// tableMarkdown renders a GFM table. The first row is the header row;
// shorter rows are padded so every row has the same column count.
func tableMarkdown(b Block) string {
	if len(b.Rows) == 0 {
		return ""
	}

	rows := make([][]string, len(b.Rows))
	cols := 0
	for i, row := range b.Rows {
		for _, c := range row {
			rows[i] = append(rows[i], cellMarkdown(c))
			for s := 1; s < c.Span; s++ {
				rows[i] = append(rows[i], "")
			}
		}
		if len(rows[i]) > cols {
			cols = len(rows[i])
		}
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	for i, row := range rows {
		for len(row) < cols {
			row = append(row, "")
		}
		writeTableRow(&sb, row)
		if i == 0 {
			delim := make([]string, cols)
			for j := range delim {
				delim[j] = "---"
			}
			writeTableRow(&sb, delim)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeTableRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(c)
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// cellMarkdown flattens a cell's paragraphs onto one line.
func cellMarkdown(c Cell) string {
	var parts []string
	for _, p := range c.Paragraphs {
		if s := inlineMarkdown(p.Runs, true); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
