package model

import "time"

// Settings is the read-only configuration snapshot injected into each engine
// operation. Builders (config loading, the settings API of a UI shell) hand
// the engine a fresh value; the engine never mutates one.
type Settings struct {
	Tabs                 []TabConfig
	SortOrder            SortOrder
	RefreshInterval      time.Duration
	GraphQLEndpoint      string
	WebBaseURL           string
	NotifyReviewRequests bool
	NotifyUnresolved     bool
	CostThresholds       CostThresholds
}

// EnabledTabs returns the enabled tabs in configured order, bounded at
// MaxTabs.
func (s Settings) EnabledTabs() []TabConfig {
	out := make([]TabConfig, 0, MaxTabs)
	for _, t := range s.Tabs {
		if !t.Enabled {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTabs {
			break
		}
	}
	return out
}
