package groups

import (
	"strings"

	"deckview-cli/internal/model"
	"deckview-cli/internal/surface"
)

// ElementIDAttr is the surface attribute that carries an element's stable id
// between scans.
const ElementIDAttr = "data-reveal-id"

// ScanSelector matches every block fragment the grouping UI can select.
const ScanSelector = "h1,h2,h3,h4,h5,h6,p,li,pre,blockquote,img"

const labelLimit = 40

// Scan walks the surface and returns the selectable element set. Fragments
// with empty geometry are skipped rather than reported as errors. Ids are
// written back to the surface so the next scan sees them and keeps them
// stable.
func Scan(s surface.Surface, mgr *Manager) []model.SelectableElement {
	used := map[string]bool{}
	frags := s.Query(ScanSelector)
	out := make([]model.SelectableElement, 0, len(frags))
	for _, fr := range frags {
		rect := fr.Rect()
		if rect.Empty() {
			continue
		}
		id := StableID(fr.Tag(), fr.Text(), fr.Attr(ElementIDAttr), used)
		fr.SetAttr(ElementIDAttr, id)

		el := model.SelectableElement{
			ID:    id,
			Tag:   fr.Tag(),
			Label: elementLabel(fr.Tag(), fr.Text()),
			Rect:  rect,
		}
		if mgr != nil {
			if gid, ok := mgr.GroupOf(id); ok {
				g := gid
				el.GroupID = &g
			}
		}
		out = append(out, el)
	}
	return out
}

// CarryIDs copies stable ids from a previous scan's surface onto a freshly
// built one. Rebuilding the surface produces new fragments with no
// attributes, which would re-key every element; carrying ids first keeps
// unchanged elements stable even when an identical sibling was edited, so a
// freed base id can never migrate to a different element.
//
// Fragments match on tag plus text. Matches are consumed in document order,
// so duplicate fragments each keep their own suffixed id.
func CarryIDs(prev, next surface.Surface) {
	pending := map[string][]string{}
	for _, fr := range prev.Query(ScanSelector) {
		id := fr.Attr(ElementIDAttr)
		if id == "" {
			continue
		}
		k := fragKey(fr.Tag(), fr.Text())
		pending[k] = append(pending[k], id)
	}
	for _, fr := range next.Query(ScanSelector) {
		k := fragKey(fr.Tag(), fr.Text())
		ids := pending[k]
		if len(ids) == 0 {
			continue
		}
		fr.SetAttr(ElementIDAttr, ids[0])
		pending[k] = ids[1:]
	}
}

func fragKey(tag, text string) string {
	return tag + "\x00" + text
}

func elementLabel(tag, text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "<" + tag + ">"
	}
	r := []rune(text)
	if len(r) > labelLimit {
		return string(r[:labelLimit-1]) + "…"
	}
	return text
}
