package alert

import "yardwatch/internal/model"

// diffNew returns the rows of current whose identity key is absent from
// previous. Pure addition detection: removals and unchanged rows are not
// reported and do not affect the result.
func diffNew(current []model.InventoryRow, previous []model.InventoryRow) []model.InventoryRow {
	prevKeys := make(map[string]bool, len(previous))
	for _, r := range previous {
		prevKeys[r.Key()] = true
	}
	var fresh []model.InventoryRow
	for _, r := range current {
		if !prevKeys[r.Key()] {
			fresh = append(fresh, r)
		}
	}
	return fresh
}
