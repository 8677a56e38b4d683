package model

import "time"

// PullRequestItem is one GitHub pull request as last observed by a refresh.
// Identity is the GraphQL node ID; two items with the same ID are the same PR
// regardless of field differences, and the newer observation wins.
//
// The Checks, CommentThreads and ReviewDetails groups are hydrated lazily by
// single-item queries; they default to empty and are reset whenever the item
// is superseded by the next full refresh of its tab. JSON tags define the
// cache document layout; detail groups and diff stats are optional so caches
// written by an older schema still decode.
type PullRequestItem struct {
	ID                string                `json:"id"`
	Number            int                   `json:"number"`
	Repo              string                `json:"repo"`
	Title             string                `json:"title"`
	Author            string                `json:"author"`
	AuthorAvatarURL   string                `json:"authorAvatarUrl,omitempty"`
	Additions         int                   `json:"additions,omitempty"`
	Deletions         int                   `json:"deletions,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	URL               string                `json:"url"`
	ReviewSummary     ReviewSummary         `json:"reviewSummary"`
	ReviewDetails     ReviewDetails         `json:"reviewDetails,omitzero"`
	CheckSummary      CheckSummary          `json:"checkSummary"`
	Checks            []Check               `json:"checks,omitempty"`
	UnresolvedThreads int                   `json:"unresolvedThreads"`
	ThreadsTotal      int                   `json:"threadsTotal"`
	CommentThreads    []CommentThread       `json:"commentThreads,omitempty"`
}

// WithChecks returns a copy of the item with the checks detail group replaced.
func (p PullRequestItem) WithChecks(checks []Check) PullRequestItem {
	p.Checks = checks
	return p
}

// WithCommentThreads returns a copy of the item with the comment-thread detail
// group replaced. Unresolved and total counts are recomputed from the threads
// so the summary stays consistent with the detail.
func (p PullRequestItem) WithCommentThreads(threads []CommentThread) PullRequestItem {
	p.CommentThreads = threads
	p.ThreadsTotal = len(threads)
	unresolved := 0
	for _, t := range threads {
		if !t.Resolved {
			unresolved++
		}
	}
	p.UnresolvedThreads = unresolved
	return p
}

// WithReviewDetails returns a copy of the item with the review detail group replaced.
func (p PullRequestItem) WithReviewDetails(d ReviewDetails) PullRequestItem {
	p.ReviewDetails = d
	return p
}

// Check is one CI check run or commit status context. The ID is
// "category|name" and is the de-duplication and display key within a single
// PR's check list, not a globally unique identifier.
type Check struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	DetailsURL string      `json:"detailsUrl,omitempty"`
}

// CommentThread is one review/code-comment thread on a pull request.
type CommentThread struct {
	ID       string `json:"id"`
	Preview  string `json:"preview"`
	Author   string `json:"author,omitempty"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Resolved bool   `json:"resolved"`
	Outdated bool   `json:"outdated"`
	URL      string `json:"url,omitempty"`
}

// ReviewActor is a user or team that participated in, or was asked for, a review.
type ReviewActor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ReviewDetails aggregates per-reviewer state for a PR. Each list is sorted
// ascending by login, case-insensitively. Approvals and change requests carry
// one entry per author (only that author's most recent review counts);
// requested reviewers are deduplicated by login, with teams represented as
// "@teamname".
type ReviewDetails struct {
	ApprovedBy          []ReviewActor `json:"approvedBy,omitempty"`
	ChangesRequestedBy  []ReviewActor `json:"changesRequestedBy,omitempty"`
	ReviewRequestedFrom []ReviewActor `json:"reviewRequestedFrom,omitempty"`
}

// IsEmpty reports whether no review detail has been loaded yet.
func (d ReviewDetails) IsEmpty() bool {
	return len(d.ApprovedBy) == 0 && len(d.ChangesRequestedBy) == 0 && len(d.ReviewRequestedFrom) == 0
}
