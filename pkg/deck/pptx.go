package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// TemplateError reports a deck that could not be parsed or rebuilt. Callers
// never get partially rewritten bytes back.
type TemplateError struct {
	Op  string
	Err error
}

func (e *TemplateError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TemplateError) Unwrap() error { return e.Err }

var slidePathRE = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func slideNumber(name string) int {
	m := slidePathRE.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// element is one occurrence of an XML element in raw slide bytes. Offsets are
// relative to the buffer it was found in.
type element struct {
	start        int // first byte of the open tag
	end          int // one past the close tag
	contentStart int
	contentEnd   int
}

// findElements locates occurrences of the named element by scanning raw
// bytes. It assumes the element does not nest within itself, which holds for
// the slide elements this package touches (p:sp, a:p, a:t), and that
// attribute values never contain '>'.
func findElements(data []byte, name string) ([]element, error) {
	openTag := []byte("<" + name)
	closeTag := []byte("</" + name + ">")
	var out []element
	i := 0
	for {
		j := bytes.Index(data[i:], openTag)
		if j < 0 {
			return out, nil
		}
		tagStart := i + j
		next := tagStart + len(openTag)
		if next >= len(data) {
			return nil, fmt.Errorf("truncated <%s> tag", name)
		}
		switch data[next] {
		case '>', '/', ' ', '\t', '\r', '\n':
		default:
			// longer element name sharing the prefix, e.g. a:tab vs a:t
			i = tagStart + 1
			continue
		}
		gt := bytes.IndexByte(data[tagStart:], '>')
		if gt < 0 {
			return nil, fmt.Errorf("malformed <%s> tag", name)
		}
		tagEnd := tagStart + gt
		if data[tagEnd-1] == '/' {
			out = append(out, element{start: tagStart, end: tagEnd + 1, contentStart: tagEnd + 1, contentEnd: tagEnd + 1})
			i = tagEnd + 1
			continue
		}
		rel := bytes.Index(data[tagEnd+1:], closeTag)
		if rel < 0 {
			return nil, fmt.Errorf("unterminated <%s> element", name)
		}
		contentStart := tagEnd + 1
		contentEnd := tagEnd + 1 + rel
		out = append(out, element{start: tagStart, end: contentEnd + len(closeTag), contentStart: contentStart, contentEnd: contentEnd})
		i = contentEnd + len(closeTag)
	}
}

// unescapeText resolves XML character references in element text.
func unescapeText(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return html.UnescapeString(s)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeText makes a string safe as XML element text.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("no %s entry", name)
}
