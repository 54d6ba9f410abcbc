// Package cssiso rewrites stylesheet selectors so a standalone slide's style
// block renders correctly inside the deck's isolated wrapper, and back.
//
// Forward maps the document-root selector `:root` to the isolated-context
// root `:host`, and the `body` type selector to the wrapper class
// `.slide-body`. Reverse is the exact inverse. Only selector text is touched;
// declarations, strings, comments and everything else pass through
// byte-for-byte, so forward/reverse round-trip exactly on any block holding
// one instance of each targeted selector.
package cssiso

import (
	"bytes"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// HostSelector is the isolated-context root selector emitted by Forward.
const HostSelector = ":host"

// BodyClass is the wrapper-compatible selector emitted by Forward for `body`.
const BodyClass = ".slide-body"

type Adapter struct {
	log *zap.Logger
}

func NewAdapter(log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{log: log.Named("css-isolate")}
}

// Forward adapts a standalone style block for the isolated wrapper.
func (a *Adapter) Forward(src string) string {
	out, n := rewrite(src, forwardRules)
	if n > 0 {
		a.log.Debug("adapted selectors for isolation", zap.Int("rewrites", n))
	}
	return out
}

// Reverse restores a previously adapted style block.
func (a *Adapter) Reverse(src string) string {
	out, n := rewrite(src, reverseRules)
	if n > 0 {
		a.log.Debug("restored standalone selectors", zap.Int("rewrites", n))
	}
	return out
}

// A rewriteRule matches a one- or two-token selector form at brace depth
// zero and substitutes replacement text for it.
type rewriteRule struct {
	first      css.TokenType
	firstData  string        // empty means any data
	second     css.TokenType // zero value (ErrorToken) means single-token rule
	secondData string
	replace    string
}

var forwardRules = []rewriteRule{
	{first: css.ColonToken, second: css.IdentToken, secondData: "root", replace: HostSelector},
	{first: css.IdentToken, firstData: "body", replace: BodyClass},
}

var reverseRules = []rewriteRule{
	{first: css.ColonToken, second: css.IdentToken, secondData: "host", replace: ":root"},
	{first: css.DelimToken, firstData: ".", second: css.IdentToken, secondData: "slide-body", replace: "body"},
}

type token struct {
	tt   css.TokenType
	data []byte
}

func rewrite(src string, rules []rewriteRule) (string, int) {
	toks := tokenize(src)
	var out bytes.Buffer
	out.Grow(len(src))

	braces := 0
	brackets := 0
	// prev is the last meaningful token already emitted; an ident directly
	// after "." or ":" is a class or pseudo-class name, not a type selector.
	var prev token
	rewrites := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.tt {
		case css.LeftBraceToken:
			braces++
		case css.RightBraceToken:
			if braces > 0 {
				braces--
			}
		case css.LeftBracketToken:
			brackets++
		case css.RightBracketToken:
			if brackets > 0 {
				brackets--
			}
		}
		// Selector context only: outside declaration blocks and outside
		// attribute selector brackets.
		if braces == 0 && brackets == 0 {
			if rep, consumed, ok := matchRule(toks, i, prev, rules); ok {
				out.WriteString(rep)
				i += consumed - 1
				rewrites++
				prev = token{tt: css.IdentToken, data: []byte(rep)}
				continue
			}
		}
		out.Write(t.data)
		if t.tt != css.WhitespaceToken && t.tt != css.CommentToken {
			prev = t
		}
	}
	return out.String(), rewrites
}

func matchRule(toks []token, i int, prev token, rules []rewriteRule) (string, int, bool) {
	for _, r := range rules {
		if toks[i].tt != r.first {
			continue
		}
		if r.firstData != "" && string(toks[i].data) != r.firstData {
			continue
		}
		// A type-selector rule must not fire on ".body" or a pseudo-class.
		if r.first == css.IdentToken && identIsQualified(prev) {
			continue
		}
		if r.second == css.ErrorToken {
			return r.replace, 1, true
		}
		if i+1 >= len(toks) {
			continue
		}
		if toks[i+1].tt != r.second || string(toks[i+1].data) != r.secondData {
			continue
		}
		return r.replace, 2, true
	}
	return "", 0, false
}

func identIsQualified(prev token) bool {
	switch prev.tt {
	case css.ColonToken:
		return true
	case css.DelimToken:
		return string(prev.data) == "."
	}
	return false
}

func tokenize(src string) []token {
	l := css.NewLexer(parse.NewInput(bytes.NewReader([]byte(src))))
	var toks []token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return toks
		}
		d := make([]byte, len(data))
		copy(d, data)
		toks = append(toks, token{tt: tt, data: d})
	}
}
