// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides anchor-friendly slug generation from arbitrary
// strings. Letters and digits of any script are kept.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Generate creates a slug from the given string: NFKC-normalized,
// lowercased, runs of anything other than letters and digits collapsed to
// one hyphen, with no leading or trailing hyphen.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Set hands out unique slugs within one document. The first use of a slug
// is returned unchanged; later uses get -1, -2 and so on appended.
type Set map[string]int

// Unique returns a slug for s that has not been returned by this Set before.
// Empty slugs become "section".
func (set Set) Unique(s string) string {
	base := Generate(s)
	if base == "" {
		base = "section"
	}
	n, used := set[base]
	if !used {
		set[base] = 0
		return base
	}
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := set[candidate]; !taken {
			set[base] = n
			set[candidate] = 0
			return candidate
		}
	}
}
