package surface

import (
	"strings"

	"deckview-cli/internal/model"

	"github.com/charmbracelet/x/ansi"
)

// DocSurface is a Surface built from markdown slide source. Each block-level
// construct becomes one fragment; geometry is line-based (y = starting line,
// h = line count, w = widest line in cells).
type DocSurface struct {
	frags []*docFragment
}

type docFragment struct {
	tag   string
	text  string
	rect  model.Rect
	attrs map[string]string
}

// BuildFromMarkdown scans markdown block structure. It is intentionally not a
// full markdown parser: the grouping engine only needs a tag, a label and a
// bounding box per block.
func BuildFromMarkdown(content string) *DocSurface {
	d := &DocSurface{}
	lines := strings.Split(content, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			i++
			continue
		}

		start := i
		switch {
		case strings.HasPrefix(trimmed, "```"):
			// Fenced code block: runs until the closing fence (or EOF).
			j := i + 1
			var body []string
			for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), "```") {
				body = append(body, lines[j])
				j++
			}
			if j < len(lines) {
				j++ // consume closing fence
			}
			d.add("pre", strings.Join(body, "\n"), blockRect(lines, start, j))
			i = j

		case strings.HasPrefix(trimmed, "#"):
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' && level < 6 {
				level++
			}
			text := strings.TrimSpace(trimmed[level:])
			d.add(headingTag(level), text, blockRect(lines, start, start+1))
			i++

		case strings.HasPrefix(trimmed, "!["):
			d.add("img", trimmed, blockRect(lines, start, start+1))
			i++

		case strings.HasPrefix(trimmed, ">"):
			j := i
			var body []string
			for j < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[j]), ">") {
				body = append(body, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[j]), ">")))
				j++
			}
			d.add("blockquote", strings.Join(body, " "), blockRect(lines, start, j))
			i = j

		case isListMarker(trimmed):
			// Each list item is its own fragment so items can join different
			// reveal steps.
			d.add("li", listItemText(trimmed), blockRect(lines, start, start+1))
			i++

		default:
			// Paragraph: runs until a blank line or a new block construct.
			j := i
			var body []string
			for j < len(lines) {
				t := strings.TrimSpace(lines[j])
				if t == "" || strings.HasPrefix(t, "#") || strings.HasPrefix(t, "```") || strings.HasPrefix(t, ">") || isListMarker(t) {
					break
				}
				body = append(body, t)
				j++
			}
			d.add("p", strings.Join(body, " "), blockRect(lines, start, j))
			i = j
		}
	}
	return d
}

func (d *DocSurface) add(tag, text string, rect model.Rect) {
	d.frags = append(d.frags, &docFragment{tag: tag, text: text, rect: rect})
}

func (d *DocSurface) Query(selector string) []Fragment {
	out := make([]Fragment, 0, len(d.frags))
	for _, fr := range d.frags {
		if selectorMatches(selector, fr.tag) {
			out = append(out, fr)
		}
	}
	return out
}

func (fr *docFragment) Tag() string      { return fr.tag }
func (fr *docFragment) Text() string     { return fr.text }
func (fr *docFragment) Rect() model.Rect { return fr.rect }
func (fr *docFragment) Attr(name string) string {
	if fr.attrs == nil {
		return ""
	}
	return fr.attrs[name]
}
func (fr *docFragment) SetAttr(name, value string) {
	if fr.attrs == nil {
		fr.attrs = map[string]string{}
	}
	fr.attrs[name] = value
}

func blockRect(lines []string, start, end int) model.Rect {
	w := 0
	for i := start; i < end && i < len(lines); i++ {
		if lw := ansi.StringWidth(lines[i]); lw > w {
			w = lw
		}
	}
	h := end - start
	if h < 0 {
		h = 0
	}
	return model.Rect{X: 0, Y: start, W: w, H: h}
}

func headingTag(level int) string {
	switch level {
	case 1:
		return "h1"
	case 2:
		return "h2"
	case 3:
		return "h3"
	case 4:
		return "h4"
	case 5:
		return "h5"
	default:
		return "h6"
	}
}

func isListMarker(s string) bool {
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") || strings.HasPrefix(s, "+ ") {
		return true
	}
	// Ordered list: digits followed by ". " or ") ".
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(s) {
		return false
	}
	return (s[i] == '.' || s[i] == ')') && s[i+1] == ' '
}

func listItemText(s string) string {
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") || strings.HasPrefix(s, "+ ") {
		return strings.TrimSpace(s[2:])
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
