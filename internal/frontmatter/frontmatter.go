// Package frontmatter splits source pages into a YAML metadata header and
// a body, and maps the header onto the typed page metadata envelope.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrNoSeparator indicates the header block was never terminated by a
// blank line before the body (or end of file).
var ErrNoSeparator = errors.New("front matter is not separated from the body by a blank line")

// ErrNotMapping indicates the header parsed as YAML but is not a mapping.
var ErrNotMapping = errors.New("front matter is not a YAML mapping")

// Split separates the metadata header from the body.
//
// The header is the first block of lines, optionally opened by a `---`
// line and optionally closed by one; in every form the header must be
// followed by at least one blank line before the body begins. The blank
// line (and a closing `---`, when present) are consumed; body keeps its
// remaining content verbatim. A closing `---` at end of file needs no
// blank line since no body follows.
func Split(content []byte) (header []byte, body []byte, err error) {
	rest := content
	var lines [][]byte

	first := true
	closed := false
	separated := false
	for len(rest) > 0 {
		line, tail := nextLine(rest)
		trimmed := bytes.TrimRight(line, "\r\n")

		if first && string(trimmed) == delimiter {
			first = false
			rest = tail
			continue
		}
		first = false

		if closed {
			// Only a blank line may follow the closing delimiter.
			if len(bytes.TrimSpace(trimmed)) != 0 {
				return nil, nil, ErrNoSeparator
			}
			separated = true
			rest = tail
			break
		}

		if len(bytes.TrimSpace(trimmed)) == 0 {
			separated = true
			rest = tail
			break
		}
		if string(trimmed) == delimiter {
			closed = true
			rest = tail
			continue
		}

		lines = append(lines, line)
		rest = tail
	}

	if !separated && len(rest) == 0 && !closed {
		// Header ran to end of file without a blank line. An entirely
		// empty input is fine (no header, no body).
		if len(lines) > 0 {
			return nil, nil, ErrNoSeparator
		}
	}
	// A closing delimiter at end of file is accepted without a blank
	// line: there is no body left to separate.
	if closed && !separated && len(rest) > 0 {
		return nil, nil, ErrNoSeparator
	}

	return bytes.Join(lines, nil), rest, nil
}

// ParseYAML parses a raw header (without delimiters) into a map.
func ParseYAML(header []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(header)) == 0 {
		return map[string]any{}, nil
	}

	var node any
	if err := yaml.Unmarshal(header, &node); err != nil {
		return nil, err
	}
	switch fields := node.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return fields, nil
	default:
		return nil, ErrNotMapping
	}
}

// nextLine returns the first line of b (including its newline) and the rest.
func nextLine(b []byte) (line, tail []byte) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return b, nil
	}
	return b[:idx+1], b[idx+1:]
}
