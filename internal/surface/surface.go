package surface

import "deckview-cli/internal/model"

// Surface is the narrow read model of the rendering surface. The grouping
// engine only ever needs selector queries plus per-fragment geometry and
// attribute access, so that is all this interface exposes; everything else
// about rendering stays on the other side of it.
type Surface interface {
	// Query returns fragments matching selector. Supported selectors are
	// "*" (all fragments) and a comma-separated list of tag names.
	Query(selector string) []Fragment
}

// Fragment is one content fragment on the surface.
type Fragment interface {
	Tag() string
	Text() string
	Rect() model.Rect
	Attr(name string) string
	SetAttr(name, value string)
}

func selectorMatches(selector, tag string) bool {
	if selector == "" || selector == "*" {
		return true
	}
	start := 0
	for i := 0; i <= len(selector); i++ {
		if i == len(selector) || selector[i] == ',' {
			part := trimSpaces(selector[start:i])
			if part == tag || part == "*" {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func trimSpaces(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}
