package surface

import "deckview-cli/internal/model"

// Fake is an in-memory Surface for tests. Fragments are returned in insertion
// order, which the scan relies on for stable element numbering.
type Fake struct {
	frags []*FakeFragment
}

type FakeFragment struct {
	FragTag  string
	FragText string
	FragRect model.Rect
	attrs    map[string]string
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) Add(tag, text string, rect model.Rect) *FakeFragment {
	fr := &FakeFragment{FragTag: tag, FragText: text, FragRect: rect}
	f.frags = append(f.frags, fr)
	return fr
}

func (f *Fake) Query(selector string) []Fragment {
	out := make([]Fragment, 0, len(f.frags))
	for _, fr := range f.frags {
		if selectorMatches(selector, fr.FragTag) {
			out = append(out, fr)
		}
	}
	return out
}

func (fr *FakeFragment) Tag() string           { return fr.FragTag }
func (fr *FakeFragment) Text() string          { return fr.FragText }
func (fr *FakeFragment) Rect() model.Rect      { return fr.FragRect }
func (fr *FakeFragment) Attr(name string) string {
	if fr.attrs == nil {
		return ""
	}
	return fr.attrs[name]
}
func (fr *FakeFragment) SetAttr(name, value string) {
	if fr.attrs == nil {
		fr.attrs = map[string]string{}
	}
	fr.attrs[name] = value
}
