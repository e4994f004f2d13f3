package types

// SortMode selects feed ordering.
type SortMode string

const (
	SortLatest  SortMode = "latest"
	SortPopular SortMode = "popular"
)

// VoteType represents the requesting user's vote on a post.
type VoteType string

const (
	VoteNone VoteType = ""
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Identity is the display-name/password pair attached to mutating calls.
// There is no session token; every call re-sends credentials.
type Identity struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Message represents a chat message in a channel stream.
// Messages are immutable once created and removed only by explicit,
// author-password-gated deletion.
type Message struct {
	ID        int64  `json:"id"`
	ChannelID string `json:"channel_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

// Reaction aggregates one emoji on one post. Reacted reports whether the
// requesting identity contributed to the count.
type Reaction struct {
	Emoji   string `json:"emoji"`
	Count   int    `json:"count"`
	Reacted bool   `json:"reacted"`
}

// Post represents a feed board post as seen by the requesting identity.
type Post struct {
	ID           int64      `json:"id"`
	Author       string     `json:"author"`
	Title        string     `json:"title"`
	Body         string     `json:"body,omitempty"`
	Media        []string   `json:"media,omitempty"`
	Upvotes      int        `json:"upvotes"`
	Downvotes    int        `json:"downvotes"`
	CommentCount int        `json:"comment_count"`
	ViewCount    int        `json:"view_count"`
	ReportCount  int        `json:"report_count"`
	CreatedAt    int64      `json:"created_at"`
	UserVote     VoteType   `json:"user_vote"`
	Reactions    []Reaction `json:"reactions"`
}

// Score returns the post's net vote tally.
func (p Post) Score() int {
	return p.Upvotes - p.Downvotes
}

// PendingMessage is an optimistic local placeholder for a message that
// has been sent but not yet confirmed by the server. Ref is a
// client-generated identifier used to reconcile or discard it.
type PendingMessage struct {
	Ref       string `json:"ref"`
	ChannelID string `json:"channel_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	QueuedAt  int64  `json:"queued_at"`
}
