package docs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML front
// matter block without closing it.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// SplitFrontMatter separates `---` delimited YAML front matter from the
// Markdown body. LF and CRLF line endings are both accepted. When the
// document has no front matter, fm is nil and body is the full input.
func SplitFrontMatter(content []byte) (fm []byte, body []byte, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}
	rest := content[len(open):]

	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line has no trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-len("---")], []byte{}, nil
		}
		return nil, nil, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], nil
}

// FrontMatter holds the front matter keys the metadata pass understands.
// Other keys are kept in Fields.
type FrontMatter struct {
	ID         string              `yaml:"id"`
	Title      string              `yaml:"title"`
	LastUpdate *LastUpdateOverride `yaml:"last_update"`

	Fields map[string]any `yaml:"-"`
}

// LastUpdateOverride replaces the values read from version control.
type LastUpdateOverride struct {
	Author string `yaml:"author"`
	Date   string `yaml:"date"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Timestamp parses Date into epoch seconds. ok is false when Date is empty.
func (o *LastUpdateOverride) Timestamp() (ts int64, ok bool, err error) {
	date := strings.TrimSpace(o.Date)
	if date == "" {
		return 0, false, nil
	}
	for _, layout := range dateLayouts {
		if t, perr := time.Parse(layout, date); perr == nil {
			return t.Unix(), true, nil
		}
	}
	return 0, false, fmt.Errorf("last_update.date %q is not a recognized date", o.Date)
}

// ParseFrontMatter decodes raw front matter (without delimiters).
func ParseFrontMatter(raw []byte) (*FrontMatter, error) {
	fm := &FrontMatter{Fields: map[string]any{}}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fm, nil
	}
	if err := yaml.Unmarshal(raw, &fm.Fields); err != nil {
		return nil, err
	}
	if fm.Fields == nil {
		fm.Fields = map[string]any{}
	}
	if err := yaml.Unmarshal(raw, fm); err != nil {
		return nil, err
	}
	return fm, nil
}
