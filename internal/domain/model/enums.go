package model

// ReviewSummary is GitHub's aggregate review verdict for a PR.
type ReviewSummary string

const (
	ReviewApproved         ReviewSummary = "approved"
	ReviewChangesRequested ReviewSummary = "changesRequested"
	ReviewRequired         ReviewSummary = "reviewRequired"
	ReviewNone             ReviewSummary = "none"
)

// CheckSummary is the aggregate CI state of a PR's head commit.
type CheckSummary string

const (
	ChecksPassing CheckSummary = "passing"
	ChecksFailing CheckSummary = "failing"
	ChecksPending CheckSummary = "pending"
	ChecksNone    CheckSummary = "none"
)

// CheckStatus is the state of an individual check run or status context.
type CheckStatus string

const (
	CheckSuccess CheckStatus = "success"
	CheckFailure CheckStatus = "failure"
	CheckPending CheckStatus = "pending"
)

// SortOrder controls how items are ordered within a tab.
type SortOrder string

const (
	SortUpdatedDesc SortOrder = "updated-desc"
	SortUpdatedAsc  SortOrder = "updated-asc"
	SortCreatedDesc SortOrder = "created-desc"
	SortCreatedAsc  SortOrder = "created-asc"
)

// Valid reports whether s is a recognized sort order.
func (s SortOrder) Valid() bool {
	switch s {
	case SortUpdatedDesc, SortUpdatedAsc, SortCreatedDesc, SortCreatedAsc:
		return true
	}
	return false
}
