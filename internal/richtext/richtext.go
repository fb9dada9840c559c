// Package richtext reads editor-produced HTML without rendering it: a
// plain-text form for previews and search snippets, and the heading
// outline used for a table of contents.
package richtext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"folio/internal/slug"
)

// Plain returns the text content of doc with tags dropped, entities
// decoded (so &nbsp; becomes a space) and whitespace collapsed. Text inside
// script and style elements is not included.
func Plain(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if a := tagAtom(z); a == atom.Script || a == atom.Style {
				skip++
			} else if isBlock(a) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			if a := tagAtom(z); a == atom.Script || a == atom.Style {
				if skip > 0 {
					skip--
				}
			} else if isBlock(a) {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			if tagAtom(z) == atom.Br {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Excerpt returns at most n runes of Plain(doc), cut at a word boundary
// where possible and marked with an ellipsis when shortened.
func Excerpt(doc string, n int) string {
	text := Plain(doc)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}

// Heading is one entry of a document outline.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Outline returns the h2 and h3 headings of doc in document order. Each
// heading keeps its own id attribute when it has one, otherwise gets one
// derived from its text; ids are unique within the outline.
func Outline(doc string) []Heading {
	z := html.NewTokenizer(strings.NewReader(doc))
	ids := slug.Set{}
	out := []Heading{}

	var (
		cur      *Heading
		explicit string
		text     strings.Builder
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			if cur != nil {
				continue
			}
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			if a != atom.H2 && a != atom.H3 {
				continue
			}
			level := 2
			if a == atom.H3 {
				level = 3
			}
			cur = &Heading{Level: level}
			explicit = ""
			text.Reset()
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" {
					explicit = strings.TrimSpace(string(val))
				}
			}
		case html.TextToken:
			if cur != nil {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			if cur == nil {
				continue
			}
			if a := tagAtom(z); a != atom.H2 && a != atom.H3 {
				continue
			}
			cur.Text = strings.Join(strings.Fields(text.String()), " ")
			if cur.Text != "" || explicit != "" {
				source := explicit
				if source == "" {
					source = cur.Text
				}
				cur.ID = ids.Unique(source)
				out = append(out, *cur)
			}
			cur = nil
		}
	}
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Tr, atom.Td, atom.Th, atom.Figcaption, atom.Br:
		return true
	}
	return false
}
