package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantFM   Frontmatter
		wantBody string
	}{
		{
			name:  "full header",
			input: "---\ntitle: Shipping fast\ndate: \"2024-03-01\"\nsummary: Notes\ntags:\n  - nextjs\n  - rust\n---\nBody text.\n",
			wantFM: Frontmatter{
				Title:   "Shipping fast",
				Date:    "2024-03-01",
				Summary: "Notes",
				Tags:    []string{"nextjs", "rust"},
			},
			wantBody: "Body text.\n",
		},
		{
			name:     "no header",
			input:    "Just a body.",
			wantFM:   Frontmatter{},
			wantBody: "Just a body.",
		},
		{
			name:     "empty header",
			input:    "---\n---\nBody",
			wantFM:   Frontmatter{},
			wantBody: "Body",
		},
		{
			name:     "crlf line endings",
			input:    "---\r\ntitle: Windows\r\n---\r\nLine one\r\nLine two",
			wantFM:   Frontmatter{Title: "Windows"},
			wantBody: "Line one\nLine two",
		},
		{
			name:     "byte order mark",
			input:    "\ufeff---\ntitle: BOM\n---\nx",
			wantFM:   Frontmatter{Title: "BOM"},
			wantBody: "x",
		},
		{
			name:     "fence inside body kept",
			input:    "---\ntitle: T\n---\nabove\n---\nbelow",
			wantFM:   Frontmatter{Title: "T"},
			wantBody: "above\n---\nbelow",
		},
		{
			name:     "closing fence at end of file",
			input:    "---\ntitle: T\n---",
			wantFM:   Frontmatter{Title: "T"},
			wantBody: "",
		},
		{
			name:     "inline tag list",
			input:    "---\ntitle: T\ntags: [go, search]\n---\n",
			wantFM:   Frontmatter{Title: "T", Tags: []string{"go", "search"}},
			wantBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := ParseFrontmatter([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseFrontmatter_Unterminated(t *testing.T) {
	_, _, err := ParseFrontmatter([]byte("---\ntitle: T\nno closing fence"))
	assert.ErrorIs(t, err, ErrUnterminatedFrontmatter)
}

func TestParseFrontmatter_InvalidYAML(t *testing.T) {
	_, _, err := ParseFrontmatter([]byte("---\ntitle: [unclosed\n---\nbody"))
	assert.ErrorIs(t, err, ErrInvalidFrontmatter)
}

func TestParseFrontmatter_WrongTagType(t *testing.T) {
	_, _, err := ParseFrontmatter([]byte("---\ntitle: T\ntags:\n  nested: map\n---\n"))
	assert.ErrorIs(t, err, ErrInvalidFrontmatter)
}
