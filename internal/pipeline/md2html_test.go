package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "heading",
			input:    "# Invoice 2024\\-42\n",
			contains: []string{"<h1>Invoice 2024-42</h1>"},
		},
		{
			name:     "hard wraps",
			input:    "line one\nline two\n",
			contains: []string{"line one<br />"},
		},
		{
			name:     "table",
			input:    "| Item | Amount |\n| --- | --- |\n| Salary | 1000 |\n",
			contains: []string{"<table>", "<th>Item</th>", "<td>1000</td>"},
		},
		{
			name:     "emphasis and strikethrough",
			input:    "**bold** *it* ~~old~~\n",
			contains: []string{"<strong>bold</strong>", "<em>it</em>", "<del>old</del>"},
		},
		{
			name:     "escaped html stays text",
			input:    "\\<script\\>alert(1)\\</script\\>\n",
			contains: []string{"&lt;script&gt;"},
			excludes: []string{"<script>"},
		},
		{
			name:     "raw html is omitted",
			input:    "<script>alert(1)</script>\n",
			excludes: []string{"<script>"},
		},
		{
			name:     "urls are not autolinked",
			input:    "see www\\.example\\.com\n",
			excludes: []string{"<a "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() = %q, want it to contain %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("ToHTML() = %q, must not contain %q", got, bad)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ReturnsFragment(t *testing.T) {
	t.Parallel()

	got, err := NewGoldmarkConverter().ToHTML(context.Background(), "hello\n")
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if strings.Contains(got, "<html") || strings.Contains(got, "<body") {
		t.Errorf("ToHTML() = %q, want a fragment without document wrapper", got)
	}
}

func TestGoldmarkConverter_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}
