package devserver

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/agora-sh/agora/internal/types"
)

// Server is the in-memory reference backend. It implements the hub REST
// contract the client engine consumes, for local development and
// end-to-end tests.
type Server struct {
	store  *Store
	logger *log.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New creates a server over the given store. logger may be nil.
func New(store *Store, logger *log.Logger) *Server {
	return &Server{
		store:    store,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.rateLimit)

	r.Route("/api", func(r chi.Router) {
		r.Get("/channels/{channel}/messages", s.handleListMessages)
		r.Post("/channels/{channel}/messages", s.handleCreateMessage)
		r.Delete("/messages/{id}", s.handleDeleteMessage)

		r.Get("/posts", s.handleListPosts)
		r.Post("/posts", s.handleCreatePost)
		r.Get("/posts/{id}", s.handleGetPost)
		r.Post("/posts/{id}/vote", s.handleVote)
		r.Post("/posts/{id}/reactions", s.handleReaction)
		r.Post("/posts/{id}/report", s.handleReport)
	})
	return r
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, hasMore := s.store.MessagesAfter(channel, after, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"hasMore":  hasMore,
	})
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	msg, err := s.store.AddMessage(identityFrom(r), channel, req.Body)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid message id")
		return
	}
	if err := s.store.DeleteMessage(identityFrom(r), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	mode := types.SortMode(r.URL.Query().Get("sort"))
	viewer := r.Header.Get("X-Agora-Name")

	posts, hasMore := s.store.ListPosts(page, limit, mode, viewer)
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":   posts,
		"hasMore": hasMore,
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string   `json:"title"`
		Body  string   `json:"body"`
		Media []string `json:"media"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	post, err := s.store.CreatePost(identityFrom(r), req.Title, req.Body, req.Media)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid post id")
		return
	}
	post, err := s.store.GetPost(id, r.Header.Get("X-Agora-Name"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid post id")
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	post, err := s.store.ToggleVote(identityFrom(r), id, types.VoteType(req.Type))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
		"user_vote": post.UserVote,
	})
}

func (s *Server) handleReaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid post id")
		return
	}
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	post, err := s.store.ToggleReaction(identityFrom(r), id, req.Emoji)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	reactions := post.Reactions
	if reactions == nil {
		reactions = []types.Reaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reactions": reactions})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid post id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	count, err := s.store.Report(identityFrom(r), id, req.Reason)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reportCount": count})
}

// rateLimit applies a per-client token bucket. Generous enough for the
// 3s poll cadence with headroom for bursts of mutations.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiterFor(host).Allow() {
			writeError(w, http.StatusTooManyRequests, "RateLimited", "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiterFor(host string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(50), 100)
		s.limiters[host] = limiter
	}
	return limiter
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "Not found")
	case errors.Is(err, ErrMissingIdentity):
		writeError(w, http.StatusUnauthorized, "AuthRequired", "A display name and password are required")
	case errors.Is(err, ErrNameTaken):
		writeError(w, http.StatusUnauthorized, "AuthFailed", "That display name is registered with a different password")
	case errors.Is(err, ErrWrongPassword):
		writeError(w, http.StatusForbidden, "Forbidden", "Only the author may delete this message")
	case errors.Is(err, ErrAlreadyReported):
		writeError(w, http.StatusConflict, "AlreadyReported", "You have already reported this post")
	case errors.Is(err, ErrBadVote), errors.Is(err, ErrEmptyField):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		if s.logger != nil {
			s.logger.Printf("devserver: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "Internal", "Internal error")
	}
}

func identityFrom(r *http.Request) types.Identity {
	return types.Identity{
		Name:     r.Header.Get("X-Agora-Name"),
		Password: r.Header.Get("X-Agora-Pass"),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
