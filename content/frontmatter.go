package content

import (
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

const frontmatterFence = "---"

var (
	// ErrUnterminatedFrontmatter is returned when an opening fence has no
	// matching closing fence.
	ErrUnterminatedFrontmatter = errors.New("content: unterminated frontmatter")

	// ErrInvalidFrontmatter is returned when the header is not valid YAML.
	ErrInvalidFrontmatter = errors.New("content: invalid frontmatter")
)

// ParseFrontmatter splits a content file into its YAML header and body.
//
// The header is a block delimited by "---" lines at the very start of the
// file. A file without an opening fence has an empty header and is returned
// whole as the body.
func ParseFrontmatter(data []byte) (Frontmatter, string, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\n") != frontmatterFence {
		return Frontmatter{}, text, nil
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		if strings.TrimRight(line, " \t\n") == frontmatterFence {
			header := text[len(lines[0]):offset]
			body := text[offset+len(line):]

			var fm Frontmatter
			if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
				return Frontmatter{}, "", fmt.Errorf("%w: %w", ErrInvalidFrontmatter, err)
			}
			return fm, body, nil
		}
		offset += len(line)
	}

	return Frontmatter{}, "", ErrUnterminatedFrontmatter
}
