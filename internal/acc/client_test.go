package acc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	token       string
	err         error
	invalidated bool
}

func (s *stubProvider) Token(ctx context.Context) (string, error) {
	return s.token, s.err
}

func (s *stubProvider) Invalidate() error {
	s.invalidated = true
	return nil
}

const issuesPayload = `{
	"results": [
		{"id": "i1", "displayId": 1, "title": "Crack in wall", "status": "open", "assignedTo": "u1"},
		{"id": "i2", "displayId": 2, "title": "Missing handrail", "status": "closed"}
	],
	"pagination": {"totalResults": 2}
}`

const usersPayload = `{"results": [
	{"uid": "u1", "name": "Ada Lovelace"},
	{"uid": "u2", "firstName": "Grace", "lastName": "Hopper"}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *stubProvider) {
	t.Helper()

	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	threeLegged := &stubProvider{token: "user-token"}
	client := NewClient(ClientConfig{
		BaseURL:     api.URL,
		HubID:       "hub-uuid",
		ProjectID:   "project-uuid",
		TwoLegged:   &stubProvider{token: "app-token"},
		ThreeLegged: threeLegged,
	})
	return client, threeLegged
}

func TestClient_FetchIssues(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/construction/issues/v1/projects/project-uuid/issues":
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(issuesPayload))
		case "/hq/v1/accounts/hub-uuid/users":
			assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(usersPayload))
		default:
			http.NotFound(w, r)
		}
	})

	issues, err := client.FetchIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, "Crack in wall", issues[0].Title)
	assert.Equal(t, "Ada Lovelace", issues[0].AssignedName)
	assert.Equal(t, "Unassigned", issues[1].AssignedName)
}

func TestClient_FetchIssues_UnauthorizedInvalidatesToken(t *testing.T) {
	client, threeLegged := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchIssues(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, threeLegged.invalidated, "401 must delete the persisted record")
}

func TestClient_FetchIssues_TokenFailurePropagates(t *testing.T) {
	client, threeLegged := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected without a token")
	})
	threeLegged.token = ""
	threeLegged.err = errors.New("no cached token")

	_, err := client.FetchIssues(context.Background())
	require.Error(t, err)
	assert.False(t, threeLegged.invalidated)
}

func TestClient_FetchIssues_UserLookupFailureDegrades(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/construction/issues/v1/projects/project-uuid/issues":
			_, _ = w.Write([]byte(issuesPayload))
		default:
			// User directory down: names degrade to raw ids.
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	issues, err := client.FetchIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", issues[0].AssignedName)
}

func TestParseUsers_AcceptsBothShapes(t *testing.T) {
	wrapped, err := parseUsers([]byte(usersPayload))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", wrapped["u1"])
	assert.Equal(t, "Grace Hopper", wrapped["u2"])

	bare, err := parseUsers([]byte(`[{"id": "u3", "email": "u3@example.com"}]`))
	require.NoError(t, err)
	assert.Equal(t, "u3@example.com", bare["u3"])
}
