package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"deckview-cli/internal/model"
)

const (
	stateDirName     = ".deckview"
	manifestFileName = "manifest.sqlite"
)

// Store is the host-side persistence layer for one deck directory. Slides
// live as markdown files next to it; ordering, animation-group records and
// deck metadata live in the manifest database under .deckview/.
//
// The viewer engine never touches this package directly: it talks to the
// host bridge, and the host talks to the Store.
type Store struct {
	Dir string
}

func (s Store) stateDir() string     { return filepath.Join(s.Dir, stateDirName) }
func (s Store) manifestPath() string { return filepath.Join(s.stateDir(), manifestFileName) }

// DefaultExportDir is where rebuilds land unless configured otherwise.
func (s Store) DefaultExportDir() string { return filepath.Join(s.stateDir(), "export") }

// Ensure creates the state directory if missing.
func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: empty deck dir")
	}
	return os.MkdirAll(s.stateDir(), 0o755)
}

// LoadDeck reads the slide files and applies the persisted slide order and
// group records. Slides not in the manifest sort after manifest slides, by
// filename; numbers are reassigned 1..N after ordering.
func (s Store) LoadDeck(ctx context.Context) (*model.Deck, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	slides, err := s.readSlideFiles()
	if err != nil {
		return nil, err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	order, err := loadSlideOrder(ctx, db)
	if err != nil {
		return nil, err
	}
	slides = applyOrder(slides, order)
	for i := range slides {
		slides[i].Number = i + 1
	}

	groupsByNumber, err := loadGroups(ctx, db)
	if err != nil {
		return nil, err
	}
	title, err := loadMeta(ctx, db, "title")
	if err != nil {
		return nil, err
	}

	return &model.Deck{
		Dir:    s.Dir,
		Title:  title,
		Slides: slides,
		Groups: groupsByNumber,
	}, nil
}

func (s Store) readSlideFiles() ([]model.Slide, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	var slides []model.Slide
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		info, err := e.Info()
		var mod time.Time
		if err == nil {
			mod = info.ModTime()
		}
		content := string(b)
		slides = append(slides, model.Slide{
			ID:        slideIDFromFilename(e.Name()),
			Title:     firstHeading(content),
			Content:   content,
			Path:      path,
			UpdatedAt: mod,
		})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].Path < slides[j].Path })
	return slides, nil
}

func slideIDFromFilename(name string) string {
	return "slide-" + strings.TrimSuffix(name, ".md")
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "#") {
			return strings.TrimSpace(strings.TrimLeft(t, "#"))
		}
	}
	return ""
}

func applyOrder(slides []model.Slide, order []string) []model.Slide {
	if len(order) == 0 {
		return slides
	}
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	sort.SliceStable(slides, func(i, j int) bool {
		pi, iOK := pos[slides[i].ID]
		pj, jOK := pos[slides[j].ID]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return slides[i].Path < slides[j].Path
		}
	})
	return slides
}

// SaveSlideContent writes a slide's markdown back to its file.
func (s Store) SaveSlideContent(slideID, content string) error {
	path, err := s.slidePath(slideID)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// InsertSlide creates a new slide file after the given slide number and
// records the new order. Returns the created slide.
func (s Store) InsertSlide(ctx context.Context, afterNumber int, content string) (model.Slide, error) {
	deck, err := s.LoadDeck(ctx)
	if err != nil {
		return model.Slide{}, err
	}
	name := nextSlideFilename(deck.Slides)
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return model.Slide{}, err
	}
	sl := model.Slide{
		ID:        slideIDFromFilename(name),
		Title:     firstHeading(content),
		Content:   content,
		Path:      path,
		UpdatedAt: time.Now(),
	}

	order := make([]string, 0, len(deck.Slides)+1)
	inserted := false
	for _, existing := range deck.Slides {
		order = append(order, existing.ID)
		if existing.Number == afterNumber {
			order = append(order, sl.ID)
			inserted = true
		}
	}
	if !inserted {
		order = append(order, sl.ID)
	}
	sl.Number = indexOf(order, sl.ID) + 1
	return sl, s.SaveOrder(ctx, order)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func nextSlideFilename(slides []model.Slide) string {
	n := len(slides) + 1
	for {
		name := slideFilename(n)
		taken := false
		for _, sl := range slides {
			if filepath.Base(sl.Path) == name {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
		n++
	}
}

func slideFilename(n int) string {
	return fmt.Sprintf("slide-%02d.md", n)
}

func (s Store) slidePath(slideID string) (string, error) {
	name := strings.TrimPrefix(slideID, "slide-")
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", errors.New("store: invalid slide id: " + slideID)
	}
	return filepath.Join(s.Dir, name+".md"), nil
}
