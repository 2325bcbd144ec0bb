package store

// rollback rebuilds a collection after a failed optimistic change to the
// record identified by target. With no concurrent changes the result equals
// snapshot. Changes that landed while the request was in flight survive:
// survivors keep their current value, records removed meanwhile stay
// removed, and records added meanwhile stay in place at the front (prepend)
// or back of the collection.
//
// removed reports whether the failed change itself removed target. Only then
// is a missing target brought back; a target removed by some other confirmed
// change stays removed.
func rollback[T any](snapshot, current []T, idOf func(T) string, target string, removed, prepend bool) []T {
	now := make(map[string]T, len(current))
	for _, item := range current {
		now[idOf(item)] = item
	}

	known := make(map[string]bool, len(snapshot))
	restored := make([]T, 0, len(snapshot))
	for _, item := range snapshot {
		id := idOf(item)
		known[id] = true
		cur, ok := now[id]
		if id == target {
			if ok || removed {
				restored = append(restored, item)
			}
			continue
		}
		if ok {
			restored = append(restored, cur)
		}
	}

	var added []T
	for _, item := range current {
		if !known[idOf(item)] {
			added = append(added, item)
		}
	}
	if len(added) == 0 {
		return restored
	}
	if prepend {
		return append(added, restored...)
	}
	return append(restored, added...)
}
