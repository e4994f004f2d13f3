package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agora-sh/agora/internal/types"
)

// Error represents a non-2xx response from the hub API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("hub error: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("hub error: %s (%d)", e.Code, e.Status)
	}
	if e.Message != "" {
		return fmt.Sprintf("hub error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("hub error (%d)", e.Status)
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IdentitySource supplies the credential pair attached to mutating
// requests. It is owned by the identity store, never read from ambient
// state inside the client.
type IdentitySource interface {
	Identity() types.Identity
}

// Client talks to the hub REST API.
type Client struct {
	baseURL    string
	identity   IdentitySource
	httpClient *http.Client
}

// NewClient constructs a hub API client. identity may be nil for
// read-only use.
func NewClient(baseURL string, identity IdentitySource) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:  normalized,
		identity: identity,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// NormalizeBaseURL normalizes a hub base URL and ensures it has a scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("hub url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid hub url: %w", err)
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("hub url must include scheme (https://)")
	}
	value = strings.TrimRight(value, "/")
	return value, nil
}

// MessagesPage is a chat listing response.
type MessagesPage struct {
	Messages []types.Message `json:"messages"`
	HasMore  bool            `json:"hasMore"`
}

// PostsPage is a feed listing response.
type PostsPage struct {
	Posts   []types.Post `json:"posts"`
	HasMore bool         `json:"hasMore"`
}

// VoteResult carries the authoritative tallies after a vote toggle.
type VoteResult struct {
	Upvotes   int            `json:"upvotes"`
	Downvotes int            `json:"downvotes"`
	UserVote  types.VoteType `json:"user_vote"`
}

type reactionsPayload struct {
	Reactions []types.Reaction `json:"reactions"`
}

type reportPayload struct {
	ReportCount int `json:"reportCount"`
}

// ListMessages fetches messages in a channel with an ID strictly greater
// than after, in ascending ID order.
func (c *Client) ListMessages(ctx context.Context, channel string, after int64, limit int) (MessagesPage, error) {
	var resp MessagesPage
	query := url.Values{}
	query.Set("after", fmt.Sprintf("%d", after))
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}
	path := fmt.Sprintf("/api/channels/%s/messages", url.PathEscape(channel))
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return MessagesPage{}, err
	}
	return resp, nil
}

// CreateMessage posts a new chat message and returns the created message
// with its server-assigned ID and timestamp.
func (c *Client) CreateMessage(ctx context.Context, channel, body string) (types.Message, error) {
	var resp types.Message
	path := fmt.Sprintf("/api/channels/%s/messages", url.PathEscape(channel))
	req := map[string]string{"body": body}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return types.Message{}, err
	}
	return resp, nil
}

// DeleteMessage removes a message. The author's password is carried in
// the identity headers; the server rejects mismatches.
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/messages/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ListPosts fetches one feed page under the given sort mode.
func (c *Client) ListPosts(ctx context.Context, page, limit int, sort types.SortMode) (PostsPage, error) {
	var resp PostsPage
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("sort", string(sort))
	if err := c.doJSON(ctx, http.MethodGet, "/api/posts", query, nil, &resp); err != nil {
		return PostsPage{}, err
	}
	return resp, nil
}

// GetPost fetches a single post. The server counts the view.
func (c *Client) GetPost(ctx context.Context, id int64) (types.Post, error) {
	var resp types.Post
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, nil, &resp); err != nil {
		return types.Post{}, err
	}
	return resp, nil
}

// CreatePostRequest describes a new feed post.
type CreatePostRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body,omitempty"`
	Media []string `json:"media,omitempty"`
}

// CreatePost submits a new feed post.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (types.Post, error) {
	var resp types.Post
	if err := c.doJSON(ctx, http.MethodPost, "/api/posts", nil, req, &resp); err != nil {
		return types.Post{}, err
	}
	return resp, nil
}

// ToggleVote applies the idempotent vote toggle and returns the
// authoritative tallies.
func (c *Client) ToggleVote(ctx context.Context, postID int64, vote types.VoteType) (VoteResult, error) {
	var resp VoteResult
	path := fmt.Sprintf("/api/posts/%d/vote", postID)
	req := map[string]string{"type": string(vote)}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return VoteResult{}, err
	}
	return resp, nil
}

// ToggleReaction toggles the identity's contribution to one emoji and
// returns the post's full updated reaction set.
func (c *Client) ToggleReaction(ctx context.Context, postID int64, emoji string) ([]types.Reaction, error) {
	var resp reactionsPayload
	path := fmt.Sprintf("/api/posts/%d/reactions", postID)
	req := map[string]string{"emoji": emoji}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Reactions, nil
}

// ReportPost files a report and returns the updated report count.
func (c *Client) ReportPost(ctx context.Context, postID int64, reason string) (int, error) {
	var resp reportPayload
	path := fmt.Sprintf("/api/posts/%d/report", postID)
	req := map[string]string{"reason": reason}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.ReportCount, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody any, respBody any) error {
	endpoint, err := c.buildURL(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.identity != nil {
		id := c.identity.Identity()
		if method != http.MethodGet {
			req.Header.Set("X-Agora-Name", id.Name)
			req.Header.Set("X-Agora-Pass", id.Password)
		} else if id.Name != "" {
			// Reads carry the display name alone so the server can mark
			// the viewer's own votes and reactions. The password never
			// travels on a read.
			req.Header.Set("X-Agora-Name", id.Name)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload errorPayload
		if err := json.Unmarshal(respData, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respData))
		}
		return apiErr
	}

	if respBody == nil {
		return nil
	}
	if len(respData) == 0 {
		return nil
	}
	return json.Unmarshal(respData, respBody)
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	endpoint := base.ResolveReference(ref)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}
