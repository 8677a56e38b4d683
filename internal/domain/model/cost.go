package model

// QueryCostEstimate is the result of a rate-limit dry run for one search
// query: the points the real query would consume and the current budget.
// Ephemeral, never persisted.
type QueryCostEstimate struct {
	Cost      int
	Remaining int
	Limit     int
}

// CostWarningLevel classifies how expensive an impending refresh looks.
type CostWarningLevel string

const (
	CostWarningNone     CostWarningLevel = "none"
	CostWarningModerate CostWarningLevel = "moderate"
	CostWarningHigh     CostWarningLevel = "high"
)

// CostThresholds are the tunable limits behind the warning classification.
type CostThresholds struct {
	SingleTabHigh     int     // any single tab at or above this cost → high
	SingleTabModerate int     // any single tab at or above this cost → at least moderate
	LowRemainingRatio float64 // remaining/limit below this ratio → high
}

// DefaultCostThresholds returns the baseline thresholds.
func DefaultCostThresholds() CostThresholds {
	return CostThresholds{
		SingleTabHigh:     50,
		SingleTabModerate: 25,
		LowRemainingRatio: 0.1,
	}
}

// TabCost is the per-tab line of a cost assessment. Err carries the failure
// message when the dry run for that tab did not complete; such tabs are
// excluded from the aggregate total.
type TabCost struct {
	TabID string
	Title string
	Cost  int
	Err   string
}

// CostAssessment aggregates per-tab dry runs ahead of an expensive refresh.
type CostAssessment struct {
	TotalCost int
	Remaining int
	Limit     int
	PerTab    []TabCost
	Warning   CostWarningLevel
}

// Classify computes the warning level for the assessment under the given
// thresholds. Failed tabs carry no cost and do not raise the level on their
// own.
func (a CostAssessment) Classify(t CostThresholds) CostWarningLevel {
	level := CostWarningNone

	for _, tab := range a.PerTab {
		if tab.Err != "" {
			continue
		}
		if tab.Cost >= t.SingleTabHigh {
			return CostWarningHigh
		}
		if tab.Cost >= t.SingleTabModerate {
			level = CostWarningModerate
		}
	}

	if a.Limit > 0 && float64(a.Remaining)/float64(a.Limit) < t.LowRemainingRatio {
		return CostWarningHigh
	}

	return level
}
