package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agora-sh/agora/internal/types"
)

// Store errors surfaced through the API error envelope.
var (
	ErrNotFound        = errors.New("not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrNameTaken       = errors.New("display name is registered with a different password")
	ErrMissingIdentity = errors.New("identity required")
	ErrAlreadyReported = errors.New("you have already reported this post")
	ErrBadVote         = errors.New("vote type must be up or down")
	ErrEmptyField      = errors.New("required field is empty")
)

// Store is the in-memory hub state. It is the source of truth the
// client engine converges on: IDs are assigned from one ascending
// sequence, listings are returned sorted, and vote/reaction toggles are
// idempotent per identity.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	now      func() int64
	users    map[string]string // display name -> password
	channels map[string][]types.Message
	posts    []*post
}

// post holds server-side state; per-viewer fields are derived on read.
type post struct {
	id         int64
	author     string
	title      string
	body       string
	media      []string
	createdAt  int64
	views      int
	comments   int
	votes      map[string]types.VoteType
	emojiOrder []string
	reactions  map[string]map[string]bool // emoji -> name set
	reporters  map[string]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:      func() int64 { return time.Now().UnixMilli() },
		users:    make(map[string]string),
		channels: make(map[string][]types.Message),
	}
}

func (s *Store) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

// verify checks the credential pair, registering the name on first use.
// Must be called with the lock held.
func (s *Store) verify(id types.Identity) error {
	if strings.TrimSpace(id.Name) == "" || id.Password == "" {
		return ErrMissingIdentity
	}
	stored, ok := s.users[id.Name]
	if !ok {
		s.users[id.Name] = id.Password
		return nil
	}
	if stored != id.Password {
		return ErrNameTaken
	}
	return nil
}

// AddMessage appends a message to a channel and returns it with its
// server-assigned ID and timestamp.
func (s *Store) AddMessage(id types.Identity, channel, body string) (types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verify(id); err != nil {
		return types.Message{}, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return types.Message{}, ErrEmptyField
	}
	msg := types.Message{
		ID:        s.nextSeq(),
		ChannelID: channel,
		Author:    id.Name,
		Body:      body,
		CreatedAt: s.now(),
	}
	s.channels[channel] = append(s.channels[channel], msg)
	return msg, nil
}

// MessagesAfter returns channel messages with IDs strictly greater than
// after, ascending, capped at limit (0 means no cap). hasMore reports
// whether the cap cut the result short.
func (s *Store) MessagesAfter(channel string, after int64, limit int) ([]types.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Message
	for _, msg := range s.channels[channel] {
		if msg.ID > after {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		return append([]types.Message(nil), out[:limit]...), true
	}
	return append([]types.Message(nil), out...), false
}

// DeleteMessage removes a message. Only the author, presenting the
// password the name was registered with, may delete.
func (s *Store) DeleteMessage(id types.Identity, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verify(id); err != nil {
		return err
	}
	for channel, msgs := range s.channels {
		for i, msg := range msgs {
			if msg.ID != messageID {
				continue
			}
			if msg.Author != id.Name {
				return ErrWrongPassword
			}
			s.channels[channel] = append(msgs[:i], msgs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// CreatePost adds a feed post.
func (s *Store) CreatePost(id types.Identity, title, body string, media []string) (types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verify(id); err != nil {
		return types.Post{}, err
	}
	if strings.TrimSpace(title) == "" {
		return types.Post{}, ErrEmptyField
	}
	p := &post{
		id:        s.nextSeq(),
		author:    id.Name,
		title:     title,
		body:      body,
		media:     append([]string(nil), media...),
		createdAt: s.now(),
		votes:     make(map[string]types.VoteType),
		reactions: make(map[string]map[string]bool),
		reporters: make(map[string]bool),
	}
	s.posts = append(s.posts, p)
	return s.view(p, id.Name), nil
}

// ListPosts returns one page of posts under a sort mode, plus whether
// more pages exist. viewer may be empty for anonymous reads.
func (s *Store) ListPosts(page, limit int, mode types.SortMode, viewer string) ([]types.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	ordered := append([]*post(nil), s.posts...)
	switch mode {
	case types.SortPopular:
		sort.SliceStable(ordered, func(i, j int) bool {
			si, sj := s.score(ordered[i]), s.score(ordered[j])
			if si != sj {
				return si > sj
			}
			return ordered[i].id > ordered[j].id
		})
	default:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].id > ordered[j].id
		})
	}
	start := (page - 1) * limit
	if start >= len(ordered) {
		return nil, false
	}
	end := start + limit
	hasMore := end < len(ordered)
	if end > len(ordered) {
		end = len(ordered)
	}
	out := make([]types.Post, 0, end-start)
	for _, p := range ordered[start:end] {
		out = append(out, s.view(p, viewer))
	}
	return out, hasMore
}

// GetPost returns one post and counts the view.
func (s *Store) GetPost(postID int64, viewer string) (types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(postID)
	if p == nil {
		return types.Post{}, ErrNotFound
	}
	p.views++
	return s.view(p, viewer), nil
}

// ToggleVote applies the idempotent vote toggle: the same direction
// twice cancels, the opposite direction switches. At most one vote per
// identity per post.
func (s *Store) ToggleVote(id types.Identity, postID int64, vote types.VoteType) (types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verify(id); err != nil {
		return types.Post{}, err
	}
	if vote != types.VoteUp && vote != types.VoteDown {
		return types.Post{}, ErrBadVote
	}
	p := s.find(postID)
	if p == nil {
		return types.Post{}, ErrNotFound
	}
	if p.votes[id.Name] == vote {
		delete(p.votes, id.Name)
	} else {
		p.votes[id.Name] = vote
	}
	return s.view(p, id.Name), nil
}

// ToggleReaction flips the identity's contribution to one emoji. At
// most one count increment per (identity, post, emoji); toggling off
// decrements by exactly one.
func (s *Store) ToggleReaction(id types.Identity, postID int64, emoji string) (types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verify(id); err != nil {
		return types.Post{}, err
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return types.Post{}, ErrEmptyField
	}
	p := s.find(postID)
	if p == nil {
		return types.Post{}, ErrNotFound
	}
	set, ok := p.reactions[emoji]
	if !ok {
		set = make(map[string]bool)
		p.reactions[emoji] = set
		p.emojiOrder = append(p.emojiOrder, emoji)
	}
	if set[id.Name] {
		delete(set, id.Name)
	} else {
		set[id.Name] = true
	}
	return s.view(p, id.Name), nil
}

// Report files a report. One report per identity per post.
func (s *Store) Report(id types.Identity, postID int64, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.verify(id); err != nil {
		return 0, err
	}
	if strings.TrimSpace(reason) == "" {
		return 0, ErrEmptyField
	}
	p := s.find(postID)
	if p == nil {
		return 0, ErrNotFound
	}
	if p.reporters[id.Name] {
		return 0, ErrAlreadyReported
	}
	p.reporters[id.Name] = true
	return len(p.reporters), nil
}

func (s *Store) find(postID int64) *post {
	for _, p := range s.posts {
		if p.id == postID {
			return p
		}
	}
	return nil
}

func (s *Store) score(p *post) int {
	up, down := 0, 0
	for _, v := range p.votes {
		if v == types.VoteUp {
			up++
		} else {
			down++
		}
	}
	return up - down
}

// view derives the per-viewer representation.
func (s *Store) view(p *post, viewer string) types.Post {
	up, down := 0, 0
	for _, v := range p.votes {
		if v == types.VoteUp {
			up++
		} else {
			down++
		}
	}
	reactions := make([]types.Reaction, 0, len(p.emojiOrder))
	for _, emoji := range p.emojiOrder {
		set := p.reactions[emoji]
		if len(set) == 0 {
			continue
		}
		reactions = append(reactions, types.Reaction{
			Emoji:   emoji,
			Count:   len(set),
			Reacted: viewer != "" && set[viewer],
		})
	}
	return types.Post{
		ID:           p.id,
		Author:       p.author,
		Title:        p.title,
		Body:         p.body,
		Media:        append([]string(nil), p.media...),
		Upvotes:      up,
		Downvotes:    down,
		CommentCount: p.comments,
		ViewCount:    p.views,
		ReportCount:  len(p.reporters),
		CreatedAt:    p.createdAt,
		UserVote:     p.votes[viewer],
		Reactions:    reactions,
	}
}
