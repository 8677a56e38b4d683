package model

import "strings"

// MaxTabs is the hard bound on configured tabs (built-in plus custom).
const MaxTabs = 5

// BuiltinKind identifies one of the fixed, predefined tabs. A tab without a
// kind is a custom tab whose query string is used as-is.
type BuiltinKind string

const (
	BuiltinAssignedToMe    BuiltinKind = "assignedToMe"
	BuiltinReviewRequested BuiltinKind = "reviewRequested"
	BuiltinCreatedByMe     BuiltinKind = "createdByMe"
)

// Built-in tab IDs are fixed by kind so cache entries and notification
// counting survive settings edits.
const (
	TabIDAssignedToMe    = "builtin-assigned"
	TabIDReviewRequested = "builtin-review-requested"
	TabIDCreatedByMe     = "builtin-created"
)

// baseQueries are the search prefixes supplied by a built-in kind. The free-
// text suffix from the tab config is appended after trimming.
var baseQueries = map[BuiltinKind]string{
	BuiltinAssignedToMe:    "is:open is:pr archived:false assignee:@me",
	BuiltinReviewRequested: "is:open is:pr archived:false review-requested:@me",
	BuiltinCreatedByMe:     "is:open is:pr archived:false author:@me",
}

// BuiltinTabID returns the fixed tab ID for a built-in kind, or "" for an
// unknown kind.
func BuiltinTabID(kind BuiltinKind) string {
	switch kind {
	case BuiltinAssignedToMe:
		return TabIDAssignedToMe
	case BuiltinReviewRequested:
		return TabIDReviewRequested
	case BuiltinCreatedByMe:
		return TabIDCreatedByMe
	}
	return ""
}

// MatchMode selects how a tab's filter rules combine.
type MatchMode string

const (
	MatchAll MatchMode = "all"
	MatchAny MatchMode = "any"
)

// FilterField names the item attribute a filter rule inspects.
type FilterField string

const (
	FilterTitle  FilterField = "title"
	FilterAuthor FilterField = "author"
	FilterRepo   FilterField = "repo"
)

// FilterRule is a single client-side predicate over a fetched item: a
// case-insensitive substring match on one field, optionally negated.
type FilterRule struct {
	Field   FilterField `json:"field"`
	Pattern string      `json:"pattern"`
	Negate  bool        `json:"negate,omitempty"`
}

// Matches reports whether the rule accepts the item.
func (r FilterRule) Matches(item PullRequestItem) bool {
	var value string
	switch r.Field {
	case FilterTitle:
		value = item.Title
	case FilterAuthor:
		value = item.Author
	case FilterRepo:
		value = item.Repo
	}

	matched := strings.Contains(strings.ToLower(value), strings.ToLower(r.Pattern))
	if r.Negate {
		return !matched
	}
	return matched
}

// TabConfig is one saved search: a query (fixed base for built-in kinds plus
// a free-text suffix, or a raw custom query), an enabled flag, and an ordered
// list of post-fetch filter rules.
type TabConfig struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Kind      BuiltinKind  `json:"kind,omitempty"`
	Query     string       `json:"query"`
	Enabled   bool         `json:"enabled"`
	MatchMode MatchMode    `json:"matchMode,omitempty"`
	Rules     []FilterRule `json:"rules,omitempty"`
}

// EffectiveQuery is the search string actually sent to GitHub: the built-in
// base query plus the trimmed suffix, or the raw query for custom tabs.
func (t TabConfig) EffectiveQuery() string {
	if t.Kind == "" {
		return strings.TrimSpace(t.Query)
	}

	base := baseQueries[t.Kind]
	suffix := strings.TrimSpace(t.Query)
	if suffix == "" {
		return base
	}
	return base + " " + suffix
}

// ApplyFilters returns the items accepted by the tab's rule list. An empty
// rule list passes everything through untouched. Filtering is pure, so
// applying it twice yields the same result as applying it once.
func (t TabConfig) ApplyFilters(items []PullRequestItem) []PullRequestItem {
	if len(t.Rules) == 0 {
		return items
	}

	out := make([]PullRequestItem, 0, len(items))
	for _, item := range items {
		if t.accepts(item) {
			out = append(out, item)
		}
	}
	return out
}

func (t TabConfig) accepts(item PullRequestItem) bool {
	if t.MatchMode == MatchAny {
		for _, r := range t.Rules {
			if r.Matches(item) {
				return true
			}
		}
		return false
	}

	// Default is match-all.
	for _, r := range t.Rules {
		if !r.Matches(item) {
			return false
		}
	}
	return true
}
