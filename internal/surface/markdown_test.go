package surface

import "testing"

const sampleSlide = `# Welcome

Intro paragraph
continued on a second line.

- first point
- second point

> a quote
> spanning lines

` + "```go\nfmt.Println(\"hi\")\n```" + `

![diagram](arch.png)
`

func TestBuildFromMarkdown_BlockTags(t *testing.T) {
	d := BuildFromMarkdown(sampleSlide)

	all := d.Query("*")
	wantTags := []string{"h1", "p", "li", "li", "blockquote", "pre", "img"}
	if len(all) != len(wantTags) {
		t.Fatalf("fragment count = %d, want %d", len(all), len(wantTags))
	}
	for i, fr := range all {
		if fr.Tag() != wantTags[i] {
			t.Fatalf("fragment %d: tag = %q, want %q", i, fr.Tag(), wantTags[i])
		}
	}
}

func TestBuildFromMarkdown_SelectorFilter(t *testing.T) {
	d := BuildFromMarkdown(sampleSlide)

	lis := d.Query("li")
	if len(lis) != 2 {
		t.Fatalf("li count = %d", len(lis))
	}
	if lis[0].Text() != "first point" || lis[1].Text() != "second point" {
		t.Fatalf("list items = %q, %q", lis[0].Text(), lis[1].Text())
	}

	both := d.Query("h1,pre")
	if len(both) != 2 {
		t.Fatalf("h1,pre count = %d", len(both))
	}
}

func TestBuildFromMarkdown_ParagraphJoinsLines(t *testing.T) {
	d := BuildFromMarkdown(sampleSlide)
	ps := d.Query("p")
	if len(ps) != 1 {
		t.Fatalf("p count = %d", len(ps))
	}
	want := "Intro paragraph continued on a second line."
	if ps[0].Text() != want {
		t.Fatalf("paragraph text = %q", ps[0].Text())
	}
}

func TestBuildFromMarkdown_Geometry(t *testing.T) {
	d := BuildFromMarkdown("# Title\n\ntext here\n")
	h1 := d.Query("h1")[0]
	r := h1.Rect()
	if r.Y != 0 || r.H != 1 || r.W == 0 {
		t.Fatalf("h1 rect = %+v", r)
	}
	p := d.Query("p")[0]
	if p.Rect().Y != 2 {
		t.Fatalf("p rect = %+v", p.Rect())
	}
}

func TestBuildFromMarkdown_UnclosedFence(t *testing.T) {
	d := BuildFromMarkdown("```\ncode line\n")
	pres := d.Query("pre")
	if len(pres) != 1 {
		t.Fatalf("pre count = %d", len(pres))
	}
	if pres[0].Text() != "code line\n" && pres[0].Text() != "code line" {
		t.Fatalf("pre text = %q", pres[0].Text())
	}
}

func TestFragment_Attrs(t *testing.T) {
	d := BuildFromMarkdown("# Title\n")
	fr := d.Query("h1")[0]
	if fr.Attr("data-reveal-id") != "" {
		t.Fatalf("unset attr = %q", fr.Attr("data-reveal-id"))
	}
	fr.SetAttr("data-reveal-id", "h1-abc")
	// Attrs persist across queries: the surface hands out the same fragment.
	if got := d.Query("h1")[0].Attr("data-reveal-id"); got != "h1-abc" {
		t.Fatalf("attr lost across queries: %q", got)
	}
}
