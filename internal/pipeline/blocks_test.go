package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-invoicedoc/internal/testsupport"
)

func TestExtractBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []Block
	}{
		{
			name: "plain paragraph with split runs",
			body: testsupport.Paragraph("Billed to: ", "Jane", " Doe"),
			want: []Block{{Kind: ParagraphBlock, Runs: []Run{{Text: "Billed to: "}, {Text: "Jane"}, {Text: " Doe"}}}},
		},
		{
			name: "heading and title styles",
			body: testsupport.Heading(2, "Event") + `<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Invoice</w:t></w:r></w:p>`,
			want: []Block{
				{Kind: ParagraphBlock, Level: 2, Runs: []Run{{Text: "Event"}}},
				{Kind: ParagraphBlock, Level: 1, Runs: []Run{{Text: "Invoice"}}},
			},
		},
		{
			name: "unknown style is body text",
			body: `<w:p><w:pPr><w:pStyle w:val="Heading9"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`,
			want: []Block{{Kind: ParagraphBlock, Runs: []Run{{Text: "x"}}}},
		},
		{
			name: "run formats and toggles",
			body: `<w:p><w:pPr><w:rPr><w:b/></w:rPr></w:pPr>` +
				`<w:r><w:rPr><w:b/><w:i w:val="0"/></w:rPr><w:t>bold</w:t></w:r>` +
				`<w:r><w:rPr><w:i/><w:strike/></w:rPr><w:t>gone</w:t></w:r>` +
				`<w:r><w:t>plain</w:t></w:r></w:p>`,
			want: []Block{{Kind: ParagraphBlock, Runs: []Run{
				{Text: "bold", Bold: true},
				{Text: "gone", Italic: true, Strike: true},
				{Text: "plain"},
			}}},
		},
		{
			name: "tabs and breaks",
			body: `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>`,
			want: []Block{{Kind: ParagraphBlock, Runs: []Run{{Text: "a\tb\nc"}}}},
		},
		{
			name: "deleted revisions and drawings are skipped",
			body: `<w:p><w:del><w:r><w:delText>old</w:delText></w:r></w:del>` +
				`<w:ins><w:r><w:t>new</w:t></w:r></w:ins>` +
				`<w:r><w:drawing><a:graphic xmlns:a="urn:a"><a:t>img</a:t></a:graphic></w:drawing></w:r></w:p>`,
			want: []Block{{Kind: ParagraphBlock, Runs: []Run{{Text: "new"}}}},
		},
		{
			name: "empty paragraph",
			body: `<w:p/>` + testsupport.Paragraph(),
			want: []Block{{Kind: ParagraphBlock}, {Kind: ParagraphBlock}},
		},
		{
			name: "table with span",
			body: testsupport.Table([]string{"Item", "Amount"}, []string{"Salary", "1000"}) +
				`<w:tbl><w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr>` + testsupport.Paragraph("Total") + `</w:tc></w:tr></w:tbl>`,
			want: []Block{
				{Kind: TableBlock, Rows: [][]Cell{
					{cell("Item"), cell("Amount")},
					{cell("Salary"), cell("1000")},
				}},
				{Kind: TableBlock, Rows: [][]Cell{{{Span: 2, Paragraphs: []Block{para("Total")}}}}},
			},
		},
		{
			name: "nested table is flattened into its cell",
			body: `<w:tbl><w:tr><w:tc>` + testsupport.Paragraph("outer") +
				testsupport.Table([]string{"a", "b"}) + `</w:tc></w:tr></w:tbl>`,
			want: []Block{{Kind: TableBlock, Rows: [][]Cell{
				{{Span: 1, Paragraphs: []Block{para("outer"), para("a"), para("b")}}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractBlocks([]byte(testsupport.Document(tt.body)))
			if err != nil {
				t.Fatalf("ExtractBlocks() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractBlocks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractBlocks_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ExtractBlocks([]byte(`<w:document xmlns:w="` + wordNS + `"><w:body><w:p><w:r><w:t>x</w:r>`))
	if !errors.Is(err, ErrExtract) {
		t.Errorf("ExtractBlocks() error = %v, want ErrExtract", err)
	}
}

func TestBlock_Text(t *testing.T) {
	t.Parallel()

	b := Block{Runs: []Run{{Text: "Jane"}, {Text: " Doe", Bold: true}}}
	if got := b.Text(); got != "Jane Doe" {
		t.Errorf("Text() = %q, want %q", got, "Jane Doe")
	}
}

func para(text string) Block {
	return Block{Kind: ParagraphBlock, Runs: []Run{{Text: text}}}
}

func cell(text string) Cell {
	return Cell{Span: 1, Paragraphs: []Block{para(text)}}
}
