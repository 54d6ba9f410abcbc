package groups

import "testing"

func TestRouteClick(t *testing.T) {
	cases := []struct {
		name          string
		selectedGroup string
		elementGroup  string
		want          ClickAction
	}{
		{"no group selected, ungrouped element", "", "", ActionToggleSelect},
		{"no group selected, grouped element", "", "group-1", ActionToggleSelect},
		{"selected group, its own element", "group-1", "group-1", ActionRemove},
		{"selected group, ungrouped element", "group-1", "", ActionAdd},
		{"selected group, other group's element", "group-1", "group-2", ActionRequestMove},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RouteClick(tc.selectedGroup, tc.elementGroup); got != tc.want {
				t.Fatalf("RouteClick(%q, %q) = %v, want %v", tc.selectedGroup, tc.elementGroup, got, tc.want)
			}
		})
	}
}
