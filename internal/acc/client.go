package acc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"accbridge/pkg/logging"
)

// issuePageLimit bounds a single issues request. Deliberately no paging
// loop here: dashboards read the most recent page and the API caps page
// size at 100 anyway.
const issuePageLimit = 100

// ErrUnauthorized indicates the API rejected a token that passed the local
// expiry check (revoked or otherwise dead). The persisted record has
// already been deleted; the next invocation re-authenticates.
var ErrUnauthorized = errors.New("token rejected by the API; re-run interactive authorization")

// TokenProvider yields a bearer token for API calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// InvalidatingTokenProvider additionally supports discarding a token the
// API has proven dead.
type InvalidatingTokenProvider interface {
	TokenProvider
	Invalidate() error
}

// Issue is the subset of an ACC issue that the dashboards consume.
type Issue struct {
	ID           string     `json:"id"`
	DisplayID    int        `json:"displayId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	AssignedName string     `json:"assignedName,omitempty"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	DueDate      string     `json:"dueDate,omitempty"`
}

// ClientConfig configures an ACC API client.
type ClientConfig struct {
	BaseURL   string
	HubID     string
	ProjectID string

	// TwoLegged authenticates account-level user lookups.
	TwoLegged TokenProvider

	// ThreeLegged authenticates issue reads and is invalidated on 401.
	ThreeLegged InvalidatingTokenProvider

	HTTPClient *http.Client
}

// Client is a thin wrapper over the ACC REST surface the dashboards need.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// NewClient creates an ACC API client.
func NewClient(cfg ClientConfig) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, client: client}
}

// FetchIssues returns the latest page of issues for the configured
// project, with assignee names resolved when user lookup succeeds.
//
// A 401 response invalidates the persisted three-legged record and
// returns ErrUnauthorized so the caller can distinguish "authenticate
// again" from a transport failure.
func (c *Client) FetchIssues(ctx context.Context) ([]Issue, error) {
	token, err := c.cfg.ThreeLegged.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/construction/issues/v1/projects/%s/issues", c.cfg.BaseURL, c.cfg.ProjectID)
	query := url.Values{"limit": {strconv.Itoa(issuePageLimit)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("issues request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Dead token despite passing the expiry check: force the next
		// run through interactive authorization.
		if err := c.cfg.ThreeLegged.Invalidate(); err != nil {
			logging.Warn("ACC", "Could not delete persisted token: %v", err)
		}
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("issues request returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var page struct {
		Results    []Issue `json:"results"`
		Pagination struct {
			TotalResults int `json:"totalResults"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("unexpected issues response: %w", err)
	}

	logging.Info("ACC", "Fetched %d of %d issues", len(page.Results), page.Pagination.TotalResults)

	c.resolveAssignees(ctx, page.Results)
	return page.Results, nil
}

// resolveAssignees fills AssignedName from the account user directory.
// Name resolution is cosmetic, so any failure degrades to raw ids.
func (c *Client) resolveAssignees(ctx context.Context, issues []Issue) {
	var users map[string]string
	if c.cfg.HubID != "" {
		var err error
		users, err = c.FetchUsers(ctx)
		if err != nil {
			logging.Warn("ACC", "User names will not be resolved: %v", err)
		}
	}

	for i := range issues {
		switch {
		case issues[i].AssignedTo == "":
			issues[i].AssignedName = "Unassigned"
		default:
			if name, ok := users[issues[i].AssignedTo]; ok {
				issues[i].AssignedName = name
			} else {
				issues[i].AssignedName = issues[i].AssignedTo
			}
		}
	}
}

// FetchUsers returns a map of account user id to display name, using a
// two-legged token.
func (c *Client) FetchUsers(ctx context.Context) (map[string]string, error) {
	token, err := c.cfg.TwoLegged.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/hq/v1/accounts/%s/users", c.cfg.BaseURL, c.cfg.HubID)
	query := url.Values{"limit": {strconv.Itoa(issuePageLimit)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("users request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("users request returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	users, err := parseUsers(body)
	if err != nil {
		return nil, err
	}

	logging.Info("ACC", "Cached %d user names", len(users))
	return users, nil
}

type accountUser struct {
	UID        string `json:"uid"`
	ID         string `json:"id"`
	AutodeskID string `json:"autodeskId"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
}

// parseUsers accepts either a bare JSON array or a {results: [...]}
// wrapper; the HQ API has returned both shapes.
func parseUsers(body []byte) (map[string]string, error) {
	var list []accountUser
	if err := json.Unmarshal(body, &list); err != nil {
		var wrapped struct {
			Results []accountUser `json:"results"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("unexpected users response: %w", err)
		}
		list = wrapped.Results
	}

	users := make(map[string]string, len(list))
	for _, u := range list {
		id := u.UID
		if id == "" {
			id = u.ID
		}
		if id == "" {
			id = u.AutodeskID
		}

		name := u.Name
		if name == "" {
			name = joinName(u.FirstName, u.LastName)
		}
		if name == "" {
			name = u.Email
		}

		if id != "" && name != "" {
			users[id] = name
		}
	}
	return users, nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
