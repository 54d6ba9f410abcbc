package cssiso

import "testing"

const standalone = `/* slide theme */
:root {
  --accent: #d33;
  font-size: 18px;
}
body {
  margin: 0;
  background: var(--accent);
}
h1, p { color: #222; }
`

const isolated = `/* slide theme */
:host {
  --accent: #d33;
  font-size: 18px;
}
.slide-body {
  margin: 0;
  background: var(--accent);
}
h1, p { color: #222; }
`

func TestForward(t *testing.T) {
	a := NewAdapter(nil)
	if got := a.Forward(standalone); got != isolated {
		t.Fatalf("Forward mismatch:\n%q\nwant:\n%q", got, isolated)
	}
}

func TestReverse(t *testing.T) {
	a := NewAdapter(nil)
	if got := a.Reverse(isolated); got != standalone {
		t.Fatalf("Reverse mismatch:\n%q\nwant:\n%q", got, standalone)
	}
}

func TestRoundTrip_ByteForByte(t *testing.T) {
	a := NewAdapter(nil)
	if got := a.Reverse(a.Forward(standalone)); got != standalone {
		t.Fatalf("round trip changed bytes:\n%q\nwant:\n%q", got, standalone)
	}
	if got := a.Forward(a.Reverse(isolated)); got != isolated {
		t.Fatalf("reverse round trip changed bytes:\n%q\nwant:\n%q", got, isolated)
	}
}

func TestForward_LeavesDeclarationsAlone(t *testing.T) {
	// "body" as part of a declaration value must not be rewritten; only
	// selector positions (outside braces) are touched.
	src := `p { content: "body"; }`
	a := NewAdapter(nil)
	if got := a.Forward(src); got != src {
		t.Fatalf("declaration mutated: %q", got)
	}
}

func TestForward_UntouchedInputPassesThrough(t *testing.T) {
	src := `h1 { color: red; }
.note { border: 1px solid } `
	a := NewAdapter(nil)
	if got := a.Forward(src); got != src {
		t.Fatalf("unrelated css changed:\n%q", got)
	}
}

func TestForward_DoesNotMatchPrefixedIdents(t *testing.T) {
	src := `bodycopy { margin: 0; }`
	a := NewAdapter(nil)
	if got := a.Forward(src); got != src {
		t.Fatalf("prefixed ident rewritten: %q", got)
	}
}

func TestForward_LeavesQualifiedSelectorsAlone(t *testing.T) {
	cases := []struct{ name, src string }{
		{"class", `.body { margin: 0; }`},
		{"pseudo", `p:hover { color: red; }`},
		{"class after combinator", `div > .body { margin: 0; }`},
	}
	a := NewAdapter(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Forward(tc.src); got != tc.src {
				t.Fatalf("qualified selector mutated: %q -> %q", tc.src, got)
			}
		})
	}
}

func TestForward_LeavesAttributeSelectorsAlone(t *testing.T) {
	src := `[data-x=body] { color: red; }`
	a := NewAdapter(nil)
	if got := a.Forward(src); got != src {
		t.Fatalf("attribute selector mutated: %q", got)
	}
}

func TestForward_TypeSelectorStillRewrittenInCompounds(t *testing.T) {
	a := NewAdapter(nil)
	if got := a.Forward(`div body { margin: 0; }`); got != `div .slide-body { margin: 0; }` {
		t.Fatalf("descendant type selector not rewritten: %q", got)
	}
}

func TestForward_EmptyInput(t *testing.T) {
	a := NewAdapter(nil)
	if got := a.Forward(""); got != "" {
		t.Fatalf("empty input produced %q", got)
	}
}
