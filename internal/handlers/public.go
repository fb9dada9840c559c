package handlers

import "net/http"

// Public serves the intro page.
type Public struct {
	intro []byte
}

// NewPublic creates the public handler group around the intro page HTML.
func NewPublic(intro []byte) *Public {
	return &Public{intro: intro}
}

// Intro writes the intro page. Visit logging happens in middleware.
func (p *Public) Intro(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(p.intro)
}
