package groups

// ClickAction is what a click on a scanned element should do given the
// current grouping selection state. Only ActionToggleSelect, ActionRemove and
// ActionAdd mutate immediately; ActionRequestMove must go through an explicit
// confirmation because it rewrites two groups' reveal semantics at once.
type ClickAction int

const (
	// No group selected: toggle the element in the pending multi-select set.
	ActionToggleSelect ClickAction = iota
	// Element belongs to the selected group: remove it from that group.
	ActionRemove
	// Element is ungrouped: add it to the selected group.
	ActionAdd
	// Element belongs to a different group: ask for move confirmation.
	ActionRequestMove
)

// RouteClick implements the selection/click-routing table. selectedGroupID
// and elementGroupID are empty when no group is selected / the element is
// ungrouped.
func RouteClick(selectedGroupID, elementGroupID string) ClickAction {
	switch {
	case selectedGroupID == "":
		return ActionToggleSelect
	case elementGroupID == selectedGroupID:
		return ActionRemove
	case elementGroupID == "":
		return ActionAdd
	default:
		return ActionRequestMove
	}
}
