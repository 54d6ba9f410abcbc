// Package export renders a deck to static files.
//
// Two formats are supported: "html" writes one self-contained page with each
// slide in a declarative shadow root, which is what makes the :host rewriting
// done by cssiso correct in the output; "text" writes one terminal-styled
// .txt file per slide via glamour.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"deckview-cli/internal/cssiso"
	"deckview-cli/internal/model"
)

const (
	FormatHTML = "html"
	FormatText = "text"
)

// Progress reports per-slide advancement to the caller. Current counts
// slides attempted so far, including failed ones.
type Progress struct {
	Current int
	Total   int
	Format  string
}

type Options struct {
	OutDir string
	Format string
}

type Exporter struct {
	log *zap.Logger
	css *cssiso.Adapter
	md  goldmark.Markdown
}

func New(log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		log: log.Named("export"),
		css: cssiso.NewAdapter(log),
		md: goldmark.New(
			// Slides embed raw <style> blocks; keep them in the output.
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
	}
}

// Deck writes every slide of the deck in the requested format. A slide that
// fails to render does not abort the run; the errors are aggregated and
// returned together so the caller can report a partial export.
func (e *Exporter) Deck(ctx context.Context, deck *model.Deck, opts Options, onProgress func(Progress)) error {
	if opts.Format == "" {
		opts.Format = FormatHTML
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	total := len(deck.Slides)
	report := func(current int) {
		if onProgress != nil {
			onProgress(Progress{Current: current, Total: total, Format: opts.Format})
		}
	}
	report(0)

	var errs error
	switch opts.Format {
	case FormatHTML:
		var body bytes.Buffer
		for i, slide := range deck.Slides {
			if err := ctx.Err(); err != nil {
				return multierr.Append(errs, err)
			}
			if err := e.writeHTMLSlide(&body, slide); err != nil {
				e.log.Warn("slide export failed", zap.Int("slide", slide.Number), zap.Error(err))
				errs = multierr.Append(errs, fmt.Errorf("slide %d: %w", slide.Number, err))
			}
			report(i + 1)
		}
		out := filepath.Join(opts.OutDir, "index.html")
		page := htmlShell(deck.Title, body.String())
		if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", out, err))
		}
	case FormatText:
		for i, slide := range deck.Slides {
			if err := ctx.Err(); err != nil {
				return multierr.Append(errs, err)
			}
			if err := e.writeTextSlide(opts.OutDir, slide); err != nil {
				e.log.Warn("slide export failed", zap.Int("slide", slide.Number), zap.Error(err))
				errs = multierr.Append(errs, fmt.Errorf("slide %d: %w", slide.Number, err))
			}
			report(i + 1)
		}
	default:
		return fmt.Errorf("unknown export format %q", opts.Format)
	}
	return errs
}

func (e *Exporter) writeHTMLSlide(w *bytes.Buffer, slide model.Slide) error {
	var rendered bytes.Buffer
	if err := e.md.Convert([]byte(slide.Content), &rendered); err != nil {
		return err
	}
	content := e.isolateStyles(rendered.String())
	fmt.Fprintf(w, "<div class=\"slide\" id=\"slide-%d\">\n", slide.Number)
	w.WriteString("<template shadowrootmode=\"open\">\n")
	w.WriteString("<div class=\"slide-body\">\n")
	w.WriteString(content)
	w.WriteString("\n</div>\n</template>\n</div>\n")
	return nil
}

// isolateStyles rewrites the contents of every embedded <style> block so the
// host-page selectors scope correctly inside the slide's shadow root.
func (e *Exporter) isolateStyles(in string) string {
	var out strings.Builder
	rest := in
	for {
		open := strings.Index(rest, "<style")
		if open < 0 {
			break
		}
		tagEnd := strings.Index(rest[open:], ">")
		if tagEnd < 0 {
			break
		}
		tagEnd += open + 1
		end := strings.Index(rest[tagEnd:], "</style>")
		if end < 0 {
			break
		}
		end += tagEnd
		out.WriteString(rest[:tagEnd])
		out.WriteString(e.css.Forward(rest[tagEnd:end]))
		rest = rest[end:]
	}
	out.WriteString(rest)
	return out.String()
}

func (e *Exporter) writeTextSlide(dir string, slide model.Slide) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(slide.Content)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("slide-%02d.txt", slide.Number)
	return os.WriteFile(filepath.Join(dir, name), []byte(out), 0o644)
}

func htmlShell(title, body string) string {
	if title == "" {
		title = "Deck"
	}
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\nbody { margin: 0; background: #111; }\n.slide { min-height: 100vh; padding: 2rem; box-sizing: border-box; color: #eee; }\n</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
