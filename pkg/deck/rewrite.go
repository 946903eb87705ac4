// Package deck rewrites text in PPTX slide decks. Only run text inside slide
// shapes is touched; every other byte of the archive is carried through
// unchanged.
package deck

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Placeholder tokens recognized in run text.
const (
	CompanyToken = "<Company>"
	TierToken    = "<Tier>"
)

// validityMarker gates the date refresh: only shapes whose aggregate text
// contains it get their dates rewritten.
const validityMarker = "Valid through"

var validityDateRE = regexp.MustCompile(`31 December \d{4}`)

// Personalization carries the values substituted into a certificate deck.
type Personalization struct {
	Company string
	Tier    string
	// Date supplies the year written into refreshed validity dates. Pass the
	// current time for live use; tests pass fixed dates.
	Date time.Time
}

// Result is a rewritten deck plus a summary of what changed.
type Result struct {
	Data                []byte
	CompanyReplacements int
	TierReplacements    int
	DateReplacements    int
}

// Changed reports whether any run text was rewritten.
func (r *Result) Changed() bool {
	return r.CompanyReplacements > 0 || r.TierReplacements > 0 || r.DateReplacements > 0
}

type splice struct {
	start, end int
	text       string
}

// Rewrite personalizes a PPTX template in memory and returns the rebuilt
// archive. Slides are processed in numeric order; placeholders are replaced
// within individual runs, so a token split across runs is left alone. Any
// parse or rebuild failure returns a TemplateError and no bytes.
func Rewrite(data []byte, p Personalization) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &TemplateError{Op: "opening archive", Err: err}
	}
	hasContentTypes := false
	var slides []string
	for _, f := range zr.File {
		if f.Name == "[Content_Types].xml" {
			hasContentTypes = true
		}
		if slidePathRE.MatchString(f.Name) {
			slides = append(slides, f.Name)
		}
	}
	if !hasContentTypes {
		return nil, &TemplateError{Op: "opening archive", Err: errors.New("missing [Content_Types].xml, not an OOXML package")}
	}
	sort.Slice(slides, func(i, j int) bool { return slideNumber(slides[i]) < slideNumber(slides[j]) })

	res := &Result{}
	rewritten := make(map[string][]byte, len(slides))
	for _, name := range slides {
		src, err := readEntry(zr, name)
		if err != nil {
			return nil, &TemplateError{Op: "reading " + name, Err: err}
		}
		out, err := rewriteSlide(src, p, res)
		if err != nil {
			return nil, &TemplateError{Op: "rewriting " + name, Err: err}
		}
		if out != nil {
			rewritten[name] = out
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if out, ok := rewritten[f.Name]; ok {
			w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
			if err != nil {
				return nil, &TemplateError{Op: "rebuilding archive", Err: err}
			}
			if _, err = w.Write(out); err != nil {
				return nil, &TemplateError{Op: "rebuilding archive", Err: err}
			}
			continue
		}
		raw, err := f.OpenRaw()
		if err != nil {
			return nil, &TemplateError{Op: "rebuilding archive", Err: err}
		}
		hdr := f.FileHeader
		w, err := zw.CreateRaw(&hdr)
		if err != nil {
			return nil, &TemplateError{Op: "rebuilding archive", Err: err}
		}
		if _, err = io.Copy(w, raw); err != nil {
			return nil, &TemplateError{Op: "rebuilding archive", Err: err}
		}
	}
	if err = zw.Close(); err != nil {
		return nil, &TemplateError{Op: "rebuilding archive", Err: err}
	}
	res.Data = buf.Bytes()
	return res, nil
}

// rewriteSlide returns the slide with substitutions applied, or nil when
// nothing in it changed.
func rewriteSlide(data []byte, p Personalization, res *Result) ([]byte, error) {
	shapes, err := findElements(data, "p:sp")
	if err != nil {
		return nil, err
	}
	var splices []splice
	for _, shape := range shapes {
		runs, aggregate, err := shapeRuns(data, shape)
		if err != nil {
			return nil, err
		}
		hasMarker := strings.Contains(aggregate, validityMarker)
		for _, run := range runs {
			logical := unescapeText(string(data[run.contentStart:run.contentEnd]))
			text := logical
			if n := strings.Count(text, CompanyToken); n > 0 {
				text = strings.ReplaceAll(text, CompanyToken, p.Company)
				res.CompanyReplacements += n
			}
			if n := strings.Count(text, TierToken); n > 0 {
				text = strings.ReplaceAll(text, TierToken, p.Tier)
				res.TierReplacements += n
			}
			if hasMarker {
				if n := len(validityDateRE.FindAllStringIndex(text, -1)); n > 0 {
					text = validityDateRE.ReplaceAllString(text, "31 December "+strconv.Itoa(p.Date.Year()))
					res.DateReplacements += n
				}
			}
			if text != logical {
				splices = append(splices, splice{start: run.contentStart, end: run.contentEnd, text: escapeText(text)})
			}
		}
	}
	if len(splices) == 0 {
		return nil, nil
	}
	var out bytes.Buffer
	prev := 0
	for _, s := range splices {
		out.Write(data[prev:s.start])
		out.WriteString(s.text)
		prev = s.end
	}
	out.Write(data[prev:])
	return out.Bytes(), nil
}

// shapeRuns collects the text runs of one shape, in document order, together
// with the shape's aggregate text. Paragraphs contribute newline separators
// to the aggregate only.
func shapeRuns(data []byte, shape element) ([]element, string, error) {
	content := data[shape.contentStart:shape.contentEnd]
	paragraphs, err := findElements(content, "a:p")
	if err != nil {
		return nil, "", err
	}
	var runs []element
	var aggregate strings.Builder
	for pi, para := range paragraphs {
		if pi > 0 {
			aggregate.WriteByte('\n')
		}
		paraContent := content[para.contentStart:para.contentEnd]
		texts, err := findElements(paraContent, "a:t")
		if err != nil {
			return nil, "", err
		}
		base := shape.contentStart + para.contentStart
		for _, t := range texts {
			aggregate.WriteString(unescapeText(string(paraContent[t.contentStart:t.contentEnd])))
			runs = append(runs, element{
				start:        base + t.start,
				end:          base + t.end,
				contentStart: base + t.contentStart,
				contentEnd:   base + t.contentEnd,
			})
		}
	}
	return runs, aggregate.String(), nil
}
