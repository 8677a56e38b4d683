package model

import "sort"

// SortItems orders items in place per the given order. The sort is stable, so
// items with equal timestamps keep their input order. Unrecognized orders
// fall back to updated-descending.
func SortItems(items []PullRequestItem, order SortOrder) {
	var less func(a, b PullRequestItem) bool

	switch order {
	case SortUpdatedAsc:
		less = func(a, b PullRequestItem) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortCreatedDesc:
		less = func(a, b PullRequestItem) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortCreatedAsc:
		less = func(a, b PullRequestItem) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		less = func(a, b PullRequestItem) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
