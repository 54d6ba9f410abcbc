package groups

import (
	"errors"
	"strconv"

	"deckview-cli/internal/model"
)

// PaletteSize is the fixed number of group highlight colors. Color indexes are
// always taken mod this value, independent of any palette the UI renders.
const PaletteSize = 6

// Manager owns the ordered list of animation groups for one slide. All
// mutations keep two invariants: orders are contiguous from 1 in list
// position, and colorIndex == (order-1) mod PaletteSize.
type Manager struct {
	groups []model.AnimationGroup
}

func NewManager(existing []model.AnimationGroup) *Manager {
	m := &Manager{groups: append([]model.AnimationGroup{}, existing...)}
	m.renumber()
	return m
}

// FromRecords rebuilds a Manager from persisted group records.
func FromRecords(recs []model.GroupRecord) *Manager {
	gs := make([]model.AnimationGroup, 0, len(recs))
	for _, r := range recs {
		gs = append(gs, model.AnimationGroup{
			ID:         r.ID,
			Order:      r.Order,
			ElementIDs: append([]string{}, r.ElementIDs...),
			ColorIndex: r.ColorIndex,
		})
	}
	return NewManager(gs)
}

// Groups returns a copy; callers never see internal slices.
func (m *Manager) Groups() []model.AnimationGroup {
	out := make([]model.AnimationGroup, len(m.groups))
	for i, g := range m.groups {
		g.ElementIDs = append([]string{}, g.ElementIDs...)
		out[i] = g
	}
	return out
}

func (m *Manager) Len() int { return len(m.groups) }

func (m *Manager) Find(id string) (model.AnimationGroup, bool) {
	for _, g := range m.groups {
		if g.ID == id {
			g.ElementIDs = append([]string{}, g.ElementIDs...)
			return g, true
		}
	}
	return model.AnimationGroup{}, false
}

// Create appends a new group holding selectedIDs (deduplicated, insertion
// order preserved). The caller clears its selection afterwards.
func (m *Manager) Create(selectedIDs []string) (model.AnimationGroup, error) {
	if len(selectedIDs) == 0 {
		return model.AnimationGroup{}, errors.New("no elements selected")
	}
	seen := map[string]bool{}
	ids := make([]string, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return model.AnimationGroup{}, errors.New("no elements selected")
	}
	order := len(m.groups) + 1
	g := model.AnimationGroup{
		ID:         m.freeGroupID(order),
		Order:      order,
		ElementIDs: ids,
		ColorIndex: len(m.groups) % PaletteSize,
	}
	m.groups = append(m.groups, g)
	g.ElementIDs = append([]string{}, g.ElementIDs...)
	return g, nil
}

// freeGroupID derives an id from the order, suffixing past ids that survived
// earlier deletions (deleting group-1 must not let a later create collide
// with a still-live group-2).
func (m *Manager) freeGroupID(order int) string {
	base := "group-" + strconv.Itoa(order)
	if !m.idTaken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !m.idTaken(candidate) {
			return candidate
		}
	}
}

func (m *Manager) idTaken(id string) bool {
	for _, g := range m.groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Delete removes the group and renumbers the rest. Returns false if id is
// unknown (no mutation).
func (m *Manager) Delete(id string) bool {
	for i, g := range m.groups {
		if g.ID == id {
			m.groups = append(m.groups[:i], m.groups[i+1:]...)
			m.renumber()
			return true
		}
	}
	return false
}

// Move applies array-move semantics: remove the group at from, reinsert at
// to, then renumber. Out-of-range indexes are clamped.
func (m *Manager) Move(from, to int) {
	n := len(m.groups)
	if n == 0 || from < 0 || from >= n {
		return
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	if from == to {
		return
	}
	g := m.groups[from]
	rest := append(append([]model.AnimationGroup{}, m.groups[:from]...), m.groups[from+1:]...)
	m.groups = append(append(append([]model.AnimationGroup{}, rest[:to]...), g), rest[to:]...)
	m.renumber()
}

// Reorder applies a full new sequence of group ids. Ids must be a permutation
// of the current set; otherwise nothing changes and an error is returned.
func (m *Manager) Reorder(orderedIDs []string) error {
	if len(orderedIDs) != len(m.groups) {
		return errors.New("reorder sequence length mismatch")
	}
	next := make([]model.AnimationGroup, 0, len(m.groups))
	for _, id := range orderedIDs {
		found := false
		for _, g := range m.groups {
			if g.ID == id {
				next = append(next, g)
				found = true
				break
			}
		}
		if !found {
			return errors.New("unknown group id in reorder sequence: " + id)
		}
	}
	m.groups = next
	m.renumber()
	return nil
}

// AddElement appends elementID to the group's membership. No-op (false) if
// the group does not exist; membership is a set, so re-adding is a no-op too.
func (m *Manager) AddElement(groupID, elementID string) bool {
	for i := range m.groups {
		if m.groups[i].ID != groupID {
			continue
		}
		for _, id := range m.groups[i].ElementIDs {
			if id == elementID {
				return true
			}
		}
		m.groups[i].ElementIDs = append(m.groups[i].ElementIDs, elementID)
		return true
	}
	return false
}

func (m *Manager) RemoveElement(groupID, elementID string) bool {
	for i := range m.groups {
		if m.groups[i].ID != groupID {
			continue
		}
		for j, id := range m.groups[i].ElementIDs {
			if id == elementID {
				m.groups[i].ElementIDs = append(m.groups[i].ElementIDs[:j], m.groups[i].ElementIDs[j+1:]...)
				break
			}
		}
		return true
	}
	return false
}

// MoveElement moves elementID between two groups atomically: both groups are
// verified before either is touched, so a failure never leaves a partial
// move behind. Callers must have obtained explicit confirmation first.
func (m *Manager) MoveElement(elementID, fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	if !m.idTaken(fromID) || !m.idTaken(toID) {
		return false
	}
	m.RemoveElement(fromID, elementID)
	m.AddElement(toID, elementID)
	return true
}

// GroupOf returns the id of the group containing elementID.
func (m *Manager) GroupOf(elementID string) (string, bool) {
	for _, g := range m.groups {
		for _, id := range g.ElementIDs {
			if id == elementID {
				return g.ID, true
			}
		}
	}
	return "", false
}

// Records returns the persistable form of the current groups.
func (m *Manager) Records() []model.GroupRecord {
	out := make([]model.GroupRecord, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, model.GroupRecord{
			ID:         g.ID,
			Order:      g.Order,
			ElementIDs: append([]string{}, g.ElementIDs...),
			ColorIndex: g.ColorIndex,
		})
	}
	return out
}

func (m *Manager) renumber() {
	for i := range m.groups {
		m.groups[i].Order = i + 1
		m.groups[i].ColorIndex = i % PaletteSize
	}
}
