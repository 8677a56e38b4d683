package driven

import (
	"context"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
)

// GitHubClient defines the driven port for the GitHub GraphQL API. A client
// is bound to one endpoint and one token at construction; the engine obtains
// clients through a factory so credential or host changes take effect on the
// next operation.
type GitHubClient interface {
	// SearchPullRequests runs a saved search and returns mapped, deduplicated
	// items ordered by updatedAt descending.
	SearchPullRequests(ctx context.Context, query string) ([]model.PullRequestItem, error)

	// EstimateQueryCost dry-runs the search and returns its rate-limit cost
	// without consuming the full query budget.
	EstimateQueryCost(ctx context.Context, query string) (model.QueryCostEstimate, error)

	// FetchChecks returns the individual check runs and status contexts for
	// the PR's head commit.
	FetchChecks(ctx context.Context, nodeID string) ([]model.Check, error)

	// FetchCommentThreads returns the PR's review threads with preview text.
	FetchCommentThreads(ctx context.Context, nodeID string) ([]model.CommentThread, error)

	// FetchReviewDetails returns aggregated reviewer state for the PR,
	// following review-request pagination to completion.
	FetchReviewDetails(ctx context.Context, nodeID string) (model.ReviewDetails, error)

	// ValidateToken verifies the bound token and returns the authenticated
	// login.
	ValidateToken(ctx context.Context) (string, error)
}

// GitHubClientFactory builds a client bound to the given GraphQL endpoint and
// token.
type GitHubClientFactory func(endpoint, token string) GitHubClient
