package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

// SplitFrontmatter decodes the leading YAML block of content into meta and
// returns the remaining body. Content without frontmatter is returned as-is.
func SplitFrontmatter(content string, meta any) (string, error) {
	if !strings.HasPrefix(content, separator) {
		return content, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, "\n"+separator)
	if idx < 0 {
		return "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	if err := yaml.Unmarshal([]byte(rest[:idx]), meta); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return rest[idx+len("\n"+separator):], nil
}

// RenderFrontmatter renders meta as YAML between separators followed by body.
// Struct metadata keeps its field order in the output.
func RenderFrontmatter(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}
