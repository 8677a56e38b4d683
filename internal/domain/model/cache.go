package model

import "time"

// Snapshot is the full set of items as of one refresh round, keyed by tab ID.
// It is the unit of cache persistence: written atomically after every
// successful (partial or full) refresh and read once at startup.
type Snapshot struct {
	UpdatedAt time.Time                    `json:"updatedAt"`
	ByTabID   map[string][]PullRequestItem `json:"byTabId"`
}

// Clone returns a deep-enough copy for handing out across the engine
// boundary: the tab map and item slices are copied, items themselves are
// values.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		UpdatedAt: s.UpdatedAt,
		ByTabID:   make(map[string][]PullRequestItem, len(s.ByTabID)),
	}
	for tabID, items := range s.ByTabID {
		copied := make([]PullRequestItem, len(items))
		copy(copied, items)
		out.ByTabID[tabID] = copied
	}
	return out
}
