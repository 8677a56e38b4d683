package github

// The fixed GraphQL operations. Search result shape and the dry-run shape are
// kept identical so the estimated cost matches the real query.

const searchQuery = `query($query: String!) {
	search(type: ISSUE, query: $query, first: 50) {
		nodes {
			... on PullRequest {
				id
				number
				title
				url
				additions
				deletions
				createdAt
				updatedAt
				reviewDecision
				author { login avatarUrl }
				repository { nameWithOwner }
				commits(last: 1) {
					nodes { commit { statusCheckRollup { state } } }
				}
				reviewThreads(first: 100) {
					totalCount
					nodes { isResolved }
				}
			}
		}
	}
}`

const costDryRunQuery = `query($query: String!) {
	rateLimit(dryRun: true) { cost remaining limit }
	search(type: ISSUE, query: $query, first: 50) {
		nodes {
			... on PullRequest {
				id
				number
				title
				url
				additions
				deletions
				createdAt
				updatedAt
				reviewDecision
				author { login avatarUrl }
				repository { nameWithOwner }
				commits(last: 1) {
					nodes { commit { statusCheckRollup { state } } }
				}
				reviewThreads(first: 100) {
					totalCount
					nodes { isResolved }
				}
			}
		}
	}
}`

const checksQuery = `query($id: ID!) {
	node(id: $id) {
		... on PullRequest {
			commits(last: 1) {
				nodes {
					commit {
						statusCheckRollup {
							contexts(first: 100) {
								nodes {
									__typename
									... on CheckRun {
										name
										status
										conclusion
										detailsUrl
										checkSuite { workflowRun { workflow { name } } }
									}
									... on StatusContext {
										context
										state
										targetUrl
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

const commentThreadsQuery = `query($id: ID!) {
	node(id: $id) {
		... on PullRequest {
			reviewThreads(first: 100) {
				nodes {
					id
					isResolved
					isOutdated
					path
					line
					comments(first: 1) {
						nodes { bodyText url author { login } }
					}
				}
			}
		}
	}
}`

const reviewDetailsQuery = `query($id: ID!, $after: String) {
	node(id: $id) {
		... on PullRequest {
			latestReviews(first: 100) {
				nodes { state submittedAt author { login avatarUrl } }
			}
			reviewRequests(first: 100, after: $after) {
				pageInfo { hasNextPage endCursor }
				nodes {
					requestedReviewer {
						__typename
						... on User { login avatarUrl }
						... on Team { name }
					}
				}
			}
		}
	}
}`

const viewerQuery = `query { viewer { login } }`

// Typed response shapes for the operations above.

type actorNode struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

type searchResponse struct {
	Search struct {
		Nodes []searchNode `json:"nodes"`
	} `json:"search"`
}

type searchNode struct {
	ID             string     `json:"id"`
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
	ReviewDecision string     `json:"reviewDecision"`
	Author         *actorNode `json:"author"`
	Repository     struct {
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"repository"`
	Commits       rollupCommitsNode `json:"commits"`
	ReviewThreads struct {
		TotalCount int `json:"totalCount"`
		Nodes      []struct {
			IsResolved bool `json:"isResolved"`
		} `json:"nodes"`
	} `json:"reviewThreads"`
}

type rollupCommitsNode struct {
	Nodes []struct {
		Commit struct {
			StatusCheckRollup *struct {
				State string `json:"state"`
			} `json:"statusCheckRollup"`
		} `json:"commit"`
	} `json:"nodes"`
}

type costDryRunResponse struct {
	RateLimit struct {
		Cost      int `json:"cost"`
		Remaining int `json:"remaining"`
		Limit     int `json:"limit"`
	} `json:"rateLimit"`
}

type checksResponse struct {
	Node struct {
		Commits struct {
			Nodes []struct {
				Commit struct {
					StatusCheckRollup *struct {
						Contexts struct {
							Nodes []checkContextNode `json:"nodes"`
						} `json:"contexts"`
					} `json:"statusCheckRollup"`
				} `json:"commit"`
			} `json:"nodes"`
		} `json:"commits"`
	} `json:"node"`
}

// checkContextNode is either a CheckRun or a StatusContext, distinguished by
// __typename. Fields of the other variant decode to their zero values.
type checkContextNode struct {
	Typename string `json:"__typename"`

	// CheckRun fields.
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	DetailsURL string `json:"detailsUrl"`
	CheckSuite *struct {
		WorkflowRun *struct {
			Workflow struct {
				Name string `json:"name"`
			} `json:"workflow"`
		} `json:"workflowRun"`
	} `json:"checkSuite"`

	// StatusContext fields.
	Context   string `json:"context"`
	State     string `json:"state"`
	TargetURL string `json:"targetUrl"`
}

type commentThreadsResponse struct {
	Node struct {
		ReviewThreads struct {
			Nodes []commentThreadNode `json:"nodes"`
		} `json:"reviewThreads"`
	} `json:"node"`
}

type commentThreadNode struct {
	ID         string `json:"id"`
	IsResolved bool   `json:"isResolved"`
	IsOutdated bool   `json:"isOutdated"`
	Path       string `json:"path"`
	Line       int    `json:"line"`
	Comments   struct {
		Nodes []struct {
			BodyText string     `json:"bodyText"`
			URL      string     `json:"url"`
			Author   *actorNode `json:"author"`
		} `json:"nodes"`
	} `json:"comments"`
}

type reviewDetailsResponse struct {
	Node struct {
		LatestReviews struct {
			Nodes []reviewNode `json:"nodes"`
		} `json:"latestReviews"`
		ReviewRequests struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []struct {
				RequestedReviewer *requestedReviewerNode `json:"requestedReviewer"`
			} `json:"nodes"`
		} `json:"reviewRequests"`
	} `json:"node"`
}

type reviewNode struct {
	State       string     `json:"state"`
	SubmittedAt string     `json:"submittedAt"`
	Author      *actorNode `json:"author"`
}

type requestedReviewerNode struct {
	Typename  string `json:"__typename"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
	Name      string `json:"name"`
}

type viewerResponse struct {
	Viewer struct {
		Login string `json:"login"`
	} `json:"viewer"`
}
