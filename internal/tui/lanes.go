package tui

import (
	"cmp"
	"slices"

	"timeline-cli/internal/model"
)

// assignLanes stacks the items of one row into subrows so that no two
// items sharing a lane overlap. Items are placed greedily by start time;
// touching items may share a lane.
func assignLanes(items []model.Item) (map[string]int, int) {
	laneOf := make(map[string]int, len(items))
	if len(items) == 0 {
		return laneOf, 0
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b model.Item) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var laneEnds []int64
	for _, it := range sorted {
		placed := false
		for l, end := range laneEnds {
			if end <= it.Span.Start {
				laneOf[it.ID] = l
				laneEnds[l] = it.Span.End
				placed = true
				break
			}
		}
		if !placed {
			laneOf[it.ID] = len(laneEnds)
			laneEnds = append(laneEnds, it.Span.End)
		}
	}
	return laneOf, len(laneEnds)
}
