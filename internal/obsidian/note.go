// Package obsidian reads and writes markdown notes with YAML frontmatter in
// the form an Obsidian vault expects.
package obsidian

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Note is a markdown document split into frontmatter and body.
type Note struct {
	Frontmatter *Frontmatter
	Body        string
}

// Frontmatter is a set of YAML fields written in a stable order: title
// first, tags last, everything else alphabetically in between.
type Frontmatter struct {
	fields map[string]any
}

// NewFrontmatter creates an empty Frontmatter.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{fields: make(map[string]any)}
}

// NewFrontmatterWithTitle creates a Frontmatter holding only title.
func NewFrontmatterWithTitle(title string) *Frontmatter {
	fm := NewFrontmatter()
	fm.Set("title", title)
	return fm
}

// ParseMarkdown splits content into frontmatter and body. Content without a
// complete frontmatter block is all body.
func ParseMarkdown(content []byte) (*Note, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	rest, ok := strings.CutPrefix(text, delimiter+"\n")
	if !ok {
		return &Note{Frontmatter: NewFrontmatter(), Body: string(content)}, nil
	}
	header, body, ok := strings.Cut(rest, "\n"+delimiter+"\n")
	if !ok {
		return &Note{Frontmatter: NewFrontmatter(), Body: string(content)}, nil
	}

	fm := NewFrontmatter()
	if err := yaml.Unmarshal([]byte(header), &fm.fields); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if fm.fields == nil {
		fm.fields = make(map[string]any)
	}

	return &Note{Frontmatter: fm, Body: strings.TrimPrefix(body, "\n")}, nil
}

// BuildNoteMarkdown renders fm and the trimmed body as a note.
func BuildNoteMarkdown(fm *Frontmatter, body string) ([]byte, error) {
	return (&Note{Frontmatter: fm, Body: strings.TrimSpace(body)}).Build()
}

// Build serializes the note. Empty frontmatter is left out entirely.
func (n *Note) Build() ([]byte, error) {
	var buf bytes.Buffer

	if len(n.Frontmatter.fields) > 0 {
		header, err := yaml.Marshal(n.Frontmatter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}
		buf.WriteString(delimiter + "\n")
		buf.Write(header)
		buf.WriteString(delimiter + "\n")
	}
	buf.WriteString(n.Body)

	return buf.Bytes(), nil
}

// Get returns the raw value of key.
func (f *Frontmatter) Get(key string) (any, bool) {
	v, ok := f.fields[key]
	return v, ok
}

// Set stores value under key.
func (f *Frontmatter) Set(key string, value any) {
	f.fields[key] = value
}

// GetString returns key as a string, or "" when it is missing or not a string.
func (f *Frontmatter) GetString(key string) string {
	s, _ := f.fields[key].(string)
	return s
}

// GetStringArray returns key as a list of non-empty strings.
func (f *Frontmatter) GetStringArray(key string) []string {
	return TagsFromAny(f.fields[key])
}

// Keys returns the field names in output order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, len(f.fields))
	for k := range f.fields {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if ra, rb := keyRank(a), keyRank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return keys
}

func keyRank(key string) int {
	switch key {
	case "title":
		return 0
	case "tags":
		return 2
	default:
		return 1
	}
}

// MarshalYAML writes the fields in Keys order with tags as a flow sequence.
func (f *Frontmatter) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, key := range f.Keys() {
		value := &yaml.Node{}
		if key == "tags" {
			value.Kind = yaml.SequenceNode
			value.Style = yaml.FlowStyle
			for _, tag := range TagsFromAny(f.fields[key]) {
				value.Content = append(value.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: tag})
			}
		} else if err := value.Encode(f.fields[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}

	return node, nil
}
