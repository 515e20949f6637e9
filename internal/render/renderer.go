// Package render substitutes recognized placeholders into message templates.
// Rendering is pure: no clock, no storage, no transport.
package render

import (
	"fmt"
	"strings"

	"github.com/innovast/followup/internal/domain"
)

// Placeholders recognized by default. Template authors may reference others;
// unrecognized tokens are left literal, never treated as an error.
const (
	PlaceholderVisitorList    = "visitor_list"
	PlaceholderAttendanceDate = "attendance_date"
)

// HTMLLineBreak is the break representation for the HTML mail transport.
const HTMLLineBreak = "<br>"

// Renderer substitutes a fixed placeholder set into subject/body text.
// Stored bodies are transport-agnostic; literal \n escapes are expanded and
// converted to the transport's line break here, at render time.
type Renderer struct {
	recognized map[string]struct{}
	lineBreak  string
}

// NewRenderer builds a renderer for the given placeholder names (without
// braces) and transport line break.
func NewRenderer(recognized []string, lineBreak string) *Renderer {
	set := make(map[string]struct{}, len(recognized))
	for _, name := range recognized {
		set[strings.TrimSpace(name)] = struct{}{}
	}
	return &Renderer{recognized: set, lineBreak: lineBreak}
}

// Default returns the production renderer: the documented placeholder set and
// HTML line breaks.
func Default() *Renderer {
	return NewRenderer([]string{PlaceholderVisitorList, PlaceholderAttendanceDate}, HTMLLineBreak)
}

// Render substitutes context values into the template. Recognized
// placeholders missing from ctx and placeholders outside the recognized set
// are left untouched.
func (r *Renderer) Render(tpl domain.MessageTemplate, ctx map[string]string) (subject, body string) {
	subject = r.substitute(tpl.Subject, ctx)
	body = r.substitute(tpl.Body, ctx)
	body = r.applyLineBreaks(body)
	return subject, body
}

func (r *Renderer) substitute(text string, ctx map[string]string) string {
	for name, value := range ctx {
		if _, ok := r.recognized[name]; !ok {
			continue
		}
		text = strings.ReplaceAll(text, placeholderToken(name), value)
	}
	return text
}

func (r *Renderer) applyLineBreaks(body string) string {
	// Stored templates carry literal \n escapes (storage is transport-agnostic).
	body = strings.ReplaceAll(body, `\n`, "\n")
	if r.lineBreak == "" || r.lineBreak == "\n" {
		return body
	}
	return strings.ReplaceAll(body, "\n", r.lineBreak)
}

func placeholderToken(name string) string {
	return fmt.Sprintf("{{%s}}", name)
}
