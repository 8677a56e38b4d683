// Package github implements the GitHubClient port against the GitHub GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Default timeouts: 15s to receive response headers, 30s for the whole
// exchange. Both are safety nets alongside context cancellation and can be
// overridden via Options.
const (
	defaultHeaderTimeout = 15 * time.Second
	defaultTotalTimeout  = 30 * time.Second
)

// Client implements the driven.GitHubClient port. It is bound to a single
// GraphQL endpoint and bearer token; the engine constructs a fresh client per
// operation through a factory, so credential or host changes never require
// mutating an existing client.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// Options tune the transport. Zero values select the defaults.
type Options struct {
	HeaderTimeout time.Duration
	TotalTimeout  time.Duration
}

// NewClient creates a client with the production transport stack:
//  1. http.Transport with a response-header timeout
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
func NewClient(endpoint, token string) *Client {
	return NewClientWithOptions(endpoint, token, Options{})
}

// NewClientWithOptions is NewClient with explicit timeout overrides.
func NewClientWithOptions(endpoint, token string, opts Options) *Client {
	headerTimeout := opts.HeaderTimeout
	if headerTimeout == 0 {
		headerTimeout = defaultHeaderTimeout
	}
	totalTimeout := opts.TotalTimeout
	if totalTimeout == 0 {
		totalTimeout = defaultTotalTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: headerTimeout,
	}
	httpClient := github_ratelimit.NewClient(transport)
	httpClient.Timeout = totalTimeout

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      token,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, endpoint, token string) *Client {
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      token,
	}
}

// graphqlRequest is the JSON body sent to the GraphQL endpoint.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlEnvelope is the standard GraphQL response wrapper.
type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute posts one GraphQL operation and decodes the data payload into T.
// Failures are classified into the driven error taxonomy: network errors,
// 401 → unauthorized, 403 with an exhausted primary rate limit → rate
// limited (carrying the reset time when the header is present), any other
// non-2xx or malformed body → invalid response, and a non-empty errors array
// → the first server message.
func execute[T any](ctx context.Context, c *Client, query string, variables map[string]any) (T, error) {
	var zero T

	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return zero, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return zero, fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", driven.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return zero, driven.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("x-ratelimit-remaining") == "0":
		return zero, &driven.RateLimitError{ResetAt: parseResetHeader(resp.Header.Get("x-ratelimit-reset"))}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return zero, fmt.Errorf("%w: unexpected status %d", driven.ErrInvalidResponse, resp.StatusCode)
	}

	var envelope graphqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("%w: decode body: %v", driven.ErrInvalidResponse, err)
	}

	// GitHub GraphQL returns at most one fatal error per request in this
	// usage pattern; surface the first message.
	if len(envelope.Errors) > 0 {
		return zero, &driven.GraphQLError{Message: envelope.Errors[0].Message}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return zero, fmt.Errorf("%w: missing data", driven.ErrInvalidResponse)
	}

	var data T
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return zero, fmt.Errorf("%w: decode data: %v", driven.ErrInvalidResponse, err)
	}

	return data, nil
}

// parseResetHeader parses the x-ratelimit-reset epoch-seconds value.
// Returns the zero time when the header is absent or malformed.
func parseResetHeader(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	epoch, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0).UTC()
}

// SearchPullRequests runs a saved search and returns mapped, deduplicated
// items ordered by updatedAt descending.
func (c *Client) SearchPullRequests(ctx context.Context, query string) ([]model.PullRequestItem, error) {
	resp, err := execute[searchResponse](ctx, c, searchQuery, map[string]any{"query": query})
	if err != nil {
		return nil, err
	}
	return mapSearchNodes(resp.Search.Nodes), nil
}

// EstimateQueryCost dry-runs the search and returns its rate-limit cost and
// the current budget.
func (c *Client) EstimateQueryCost(ctx context.Context, query string) (model.QueryCostEstimate, error) {
	resp, err := execute[costDryRunResponse](ctx, c, costDryRunQuery, map[string]any{"query": query})
	if err != nil {
		return model.QueryCostEstimate{}, err
	}
	return model.QueryCostEstimate{
		Cost:      resp.RateLimit.Cost,
		Remaining: resp.RateLimit.Remaining,
		Limit:     resp.RateLimit.Limit,
	}, nil
}

// FetchChecks returns the individual check runs and status contexts for the
// PR's head commit.
func (c *Client) FetchChecks(ctx context.Context, nodeID string) ([]model.Check, error) {
	resp, err := execute[checksResponse](ctx, c, checksQuery, map[string]any{"id": nodeID})
	if err != nil {
		return nil, err
	}
	return mapCheckContexts(resp), nil
}

// FetchCommentThreads returns the PR's review threads with preview text.
func (c *Client) FetchCommentThreads(ctx context.Context, nodeID string) ([]model.CommentThread, error) {
	resp, err := execute[commentThreadsResponse](ctx, c, commentThreadsQuery, map[string]any{"id": nodeID})
	if err != nil {
		return nil, err
	}

	threads := make([]model.CommentThread, 0, len(resp.Node.ReviewThreads.Nodes))
	for _, node := range resp.Node.ReviewThreads.Nodes {
		threads = append(threads, mapCommentThread(node))
	}
	return threads, nil
}

// FetchReviewDetails returns aggregated reviewer state for the PR. Review
// requests are paginated; every page is fetched and concatenated before the
// final actor lists are computed.
func (c *Client) FetchReviewDetails(ctx context.Context, nodeID string) (model.ReviewDetails, error) {
	var reviews []reviewNode
	var requested []requestedReviewerNode

	variables := map[string]any{"id": nodeID, "after": nil}
	for {
		resp, err := execute[reviewDetailsResponse](ctx, c, reviewDetailsQuery, variables)
		if err != nil {
			return model.ReviewDetails{}, err
		}

		// latestReviews is identical on every page; keep the first.
		if reviews == nil {
			reviews = resp.Node.LatestReviews.Nodes
		}
		for _, node := range resp.Node.ReviewRequests.Nodes {
			if node.RequestedReviewer != nil {
				requested = append(requested, *node.RequestedReviewer)
			}
		}

		if !resp.Node.ReviewRequests.PageInfo.HasNextPage {
			break
		}
		variables["after"] = resp.Node.ReviewRequests.PageInfo.EndCursor
	}

	return buildReviewDetails(reviews, requested), nil
}

// ValidateToken verifies the bound token and returns the authenticated login.
func (c *Client) ValidateToken(ctx context.Context) (string, error) {
	resp, err := execute[viewerResponse](ctx, c, viewerQuery, nil)
	if err != nil {
		return "", err
	}
	return resp.Viewer.Login, nil
}
