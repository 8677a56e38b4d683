package github

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
)

const (
	// Category assigned to check runs whose workflow name is unavailable.
	defaultCheckCategory = "GitHub Actions"
	// Category assigned to commit status contexts.
	statusCheckCategory = "Status checks"

	// Comment thread previews are truncated to this many characters.
	previewLimit = 120
	// Preview shown when the first comment has no text.
	emptyPreview = "(no comment text)"
)

// mapSearchNodes converts raw search nodes to domain items. Nodes that fail
// to parse a timestamp or URL are dropped rather than failing the whole
// search. Duplicate IDs keep the first occurrence; the result is sorted by
// updatedAt descending (the engine re-sorts per the configured order later).
func mapSearchNodes(nodes []searchNode) []model.PullRequestItem {
	items := make([]model.PullRequestItem, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))

	for _, node := range nodes {
		// Non-PR search nodes decode as empty objects.
		if node.ID == "" || seen[node.ID] {
			continue
		}

		item, ok := mapSearchNode(node)
		if !ok {
			continue
		}

		seen[node.ID] = true
		items = append(items, item)
	}

	model.SortItems(items, model.SortUpdatedDesc)
	return items
}

func mapSearchNode(node searchNode) (model.PullRequestItem, bool) {
	createdAt, err := parseTimestamp(node.CreatedAt)
	if err != nil {
		return model.PullRequestItem{}, false
	}
	updatedAt, err := parseTimestamp(node.UpdatedAt)
	if err != nil {
		return model.PullRequestItem{}, false
	}
	if node.URL == "" {
		return model.PullRequestItem{}, false
	}
	if _, err := url.Parse(node.URL); err != nil {
		return model.PullRequestItem{}, false
	}

	var author, avatar string
	if node.Author != nil {
		author = node.Author.Login
		avatar = node.Author.AvatarURL
	}

	unresolved := 0
	for _, thread := range node.ReviewThreads.Nodes {
		if !thread.IsResolved {
			unresolved++
		}
	}

	return model.PullRequestItem{
		ID:                node.ID,
		Number:            node.Number,
		Repo:              node.Repository.NameWithOwner,
		Title:             node.Title,
		Author:            author,
		AuthorAvatarURL:   avatar,
		Additions:         node.Additions,
		Deletions:         node.Deletions,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		URL:               node.URL,
		ReviewSummary:     mapReviewDecision(node.ReviewDecision),
		CheckSummary:      mapRollupState(rollupState(node.Commits)),
		UnresolvedThreads: unresolved,
		ThreadsTotal:      node.ReviewThreads.TotalCount,
	}, true
}

// parseTimestamp parses an ISO-8601 instant with optional fractional seconds.
func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func rollupState(commits rollupCommitsNode) string {
	if len(commits.Nodes) == 0 {
		return ""
	}
	rollup := commits.Nodes[0].Commit.StatusCheckRollup
	if rollup == nil {
		return ""
	}
	return rollup.State
}

func mapReviewDecision(decision string) model.ReviewSummary {
	switch decision {
	case "APPROVED":
		return model.ReviewApproved
	case "CHANGES_REQUESTED":
		return model.ReviewChangesRequested
	case "REVIEW_REQUIRED":
		return model.ReviewRequired
	default:
		return model.ReviewNone
	}
}

func mapRollupState(state string) model.CheckSummary {
	switch state {
	case "SUCCESS":
		return model.ChecksPassing
	case "FAILURE", "ERROR", "STARTUP_FAILURE":
		return model.ChecksFailing
	case "PENDING", "EXPECTED":
		return model.ChecksPending
	default:
		return model.ChecksNone
	}
}

// mapCheckContexts flattens the rollup contexts of the head commit into
// domain checks. Contexts whose state cannot be mapped are omitted.
func mapCheckContexts(resp checksResponse) []model.Check {
	var checks []model.Check

	for _, commitNode := range resp.Node.Commits.Nodes {
		rollup := commitNode.Commit.StatusCheckRollup
		if rollup == nil {
			continue
		}
		for _, ctx := range rollup.Contexts.Nodes {
			if check, ok := mapCheckContext(ctx); ok {
				checks = append(checks, check)
			}
		}
	}

	return checks
}

func mapCheckContext(node checkContextNode) (model.Check, bool) {
	switch node.Typename {
	case "CheckRun":
		status, ok := mapCheckRunStatus(node.Conclusion, node.Status)
		if !ok {
			return model.Check{}, false
		}

		category := defaultCheckCategory
		if node.CheckSuite != nil && node.CheckSuite.WorkflowRun != nil && node.CheckSuite.WorkflowRun.Workflow.Name != "" {
			category = node.CheckSuite.WorkflowRun.Workflow.Name
		}

		return model.Check{
			ID:         category + "|" + node.Name,
			Name:       node.Name,
			Category:   category,
			Status:     status,
			DetailsURL: node.DetailsURL,
		}, true

	case "StatusContext":
		status, ok := mapStatusContextState(node.State)
		if !ok {
			return model.Check{}, false
		}

		return model.Check{
			ID:         statusCheckCategory + "|" + node.Context,
			Name:       node.Context,
			Category:   statusCheckCategory,
			Status:     status,
			DetailsURL: node.TargetURL,
		}, true
	}

	return model.Check{}, false
}

// mapCheckRunStatus maps a check run's conclusion, falling back to its status
// when the conclusion is absent or unrecognized without a terminal meaning.
func mapCheckRunStatus(conclusion, status string) (model.CheckStatus, bool) {
	switch conclusion {
	case "SUCCESS", "NEUTRAL", "SKIPPED":
		return model.CheckSuccess, true
	case "FAILURE", "ERROR", "TIMED_OUT", "ACTION_REQUIRED", "STARTUP_FAILURE", "STALE", "CANCELLED":
		return model.CheckFailure, true
	}

	switch status {
	case "COMPLETED":
		return model.CheckSuccess, true
	case "IN_PROGRESS", "QUEUED", "PENDING", "WAITING", "REQUESTED", "EXPECTED":
		return model.CheckPending, true
	}

	return "", false
}

func mapStatusContextState(state string) (model.CheckStatus, bool) {
	switch state {
	case "SUCCESS":
		return model.CheckSuccess, true
	case "FAILURE", "ERROR", "TIMED_OUT", "CANCELLED", "ACTION_REQUIRED", "STARTUP_FAILURE":
		return model.CheckFailure, true
	case "PENDING", "EXPECTED":
		return model.CheckPending, true
	}
	return "", false
}

// mapCommentThread builds a domain thread from a raw review-thread node,
// truncating the first comment to the preview limit.
func mapCommentThread(node commentThreadNode) model.CommentThread {
	thread := model.CommentThread{
		ID:       node.ID,
		Preview:  emptyPreview,
		Path:     node.Path,
		Line:     node.Line,
		Resolved: node.IsResolved,
		Outdated: node.IsOutdated,
	}

	if len(node.Comments.Nodes) > 0 {
		first := node.Comments.Nodes[0]
		if text := strings.TrimSpace(first.BodyText); text != "" {
			thread.Preview = truncate(text, previewLimit)
		}
		thread.URL = first.URL
		if first.Author != nil {
			thread.Author = first.Author.Login
		}
	}

	return thread
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// buildReviewDetails computes the final actor lists: one entry per author for
// approvals and change requests (only the most recent review per author
// counts), and requested reviewers deduplicated by login with teams
// represented as "@teamname". Each list is sorted ascending by login,
// case-insensitively.
func buildReviewDetails(reviews []reviewNode, requested []requestedReviewerNode) model.ReviewDetails {
	type latest struct {
		actor       model.ReviewActor
		state       string
		submittedAt time.Time
	}

	latestByLogin := make(map[string]latest)
	for _, review := range reviews {
		if review.Author == nil || review.Author.Login == "" {
			continue
		}
		submittedAt, err := parseTimestamp(review.SubmittedAt)
		if err != nil {
			continue
		}

		login := review.Author.Login
		if prev, ok := latestByLogin[login]; ok && !submittedAt.After(prev.submittedAt) {
			continue
		}
		latestByLogin[login] = latest{
			actor:       model.ReviewActor{Login: login, AvatarURL: review.Author.AvatarURL},
			state:       review.State,
			submittedAt: submittedAt,
		}
	}

	var details model.ReviewDetails
	for _, entry := range latestByLogin {
		switch entry.state {
		case "APPROVED":
			details.ApprovedBy = append(details.ApprovedBy, entry.actor)
		case "CHANGES_REQUESTED":
			details.ChangesRequestedBy = append(details.ChangesRequestedBy, entry.actor)
		}
	}

	seen := make(map[string]bool, len(requested))
	for _, reviewer := range requested {
		actor, ok := mapRequestedReviewer(reviewer)
		if !ok || seen[actor.Login] {
			continue
		}
		seen[actor.Login] = true
		details.ReviewRequestedFrom = append(details.ReviewRequestedFrom, actor)
	}

	sortActors(details.ApprovedBy)
	sortActors(details.ChangesRequestedBy)
	sortActors(details.ReviewRequestedFrom)

	return details
}

func mapRequestedReviewer(node requestedReviewerNode) (model.ReviewActor, bool) {
	switch node.Typename {
	case "User":
		if node.Login == "" {
			return model.ReviewActor{}, false
		}
		return model.ReviewActor{Login: node.Login, AvatarURL: node.AvatarURL}, true
	case "Team":
		if node.Name == "" {
			return model.ReviewActor{}, false
		}
		return model.ReviewActor{Login: "@" + node.Name}, true
	}
	return model.ReviewActor{}, false
}

func sortActors(actors []model.ReviewActor) {
	sort.SliceStable(actors, func(i, j int) bool {
		return strings.ToLower(actors[i].Login) < strings.ToLower(actors[j].Login)
	})
}
