package sync

import (
	"context"
	"log"
	"sync"

	"github.com/agora-sh/agora/internal/api"
	"github.com/agora-sh/agora/internal/types"
)

// FeedLister is the read side of the feed API consumed by the pager.
type FeedLister interface {
	ListPosts(ctx context.Context, page, limit int, sort types.SortMode) (api.PostsPage, error)
}

// FeedPager serves the feed's infinite-scroll list. Page 1 replaces the
// full local list; later pages append. A load that starts while another
// is outstanding is dropped. A failed load leaves prior state untouched.
//
// gen guards against a sort change racing an in-flight load: SetSort
// bumps it, and a completion whose generation no longer matches belongs
// to a discarded window and must not write.
type FeedPager struct {
	mu        sync.Mutex
	client    FeedLister
	pageSize  int
	sort      types.SortMode
	page      int
	gen       int
	posts     []types.Post
	hasMore   bool
	loading   bool
	cancelled bool
	logger    *log.Logger
}

// NewFeedPager creates a pager with the given page size and initial sort
// mode. No fetch happens until Load.
func NewFeedPager(client FeedLister, pageSize int, sort types.SortMode) *FeedPager {
	if pageSize <= 0 {
		pageSize = DefaultConfig().PageSize
	}
	return &FeedPager{
		client:   client,
		pageSize: pageSize,
		sort:     sort,
		hasMore:  true,
	}
}

// SetLogger installs an optional debug logger.
func (f *FeedPager) SetLogger(logger *log.Logger) {
	f.logger = logger
}

// Load fetches one page under the given sort mode. Page 1 replaces all
// local state for that sort; pages above 1 append and must be requested
// in increasing order, one at a time. Returns ErrBusy when dropped.
func (f *FeedPager) Load(ctx context.Context, page int, sort types.SortMode) error {
	f.mu.Lock()
	if f.loading || f.cancelled {
		f.mu.Unlock()
		return ErrBusy
	}
	f.loading = true
	gen := f.gen
	f.mu.Unlock()

	resp, err := f.client.ListPosts(ctx, page, f.pageSize, sort)

	f.mu.Lock()
	f.loading = false
	if f.cancelled {
		f.mu.Unlock()
		return nil
	}
	if gen != f.gen {
		// The sort changed while this fetch was in flight; the result
		// belongs to a discarded window. Run the page-1 load the sort
		// change could not start itself.
		current := f.sort
		f.mu.Unlock()
		return f.Load(ctx, 1, current)
	}
	defer f.mu.Unlock()
	if err != nil {
		// Prior state stays untouched; the user may scroll-trigger a
		// retry. No automatic retry timer for feed pages.
		f.logf("feed load page %d: %v", page, err)
		return err
	}
	if page == 1 {
		f.posts = append([]types.Post(nil), resp.Posts...)
	} else {
		f.posts = append(f.posts, resp.Posts...)
	}
	f.page = page
	f.sort = sort
	f.hasMore = resp.HasMore
	return nil
}

// LoadNext requests the next page when the scroll sentinel becomes
// visible. It is a no-op while a fetch is outstanding or when the server
// reported no more pages.
func (f *FeedPager) LoadNext(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || !f.hasMore || f.cancelled {
		f.mu.Unlock()
		return nil
	}
	next := f.page + 1
	sort := f.sort
	f.mu.Unlock()
	err := f.Load(ctx, next, sort)
	if err == ErrBusy {
		return nil
	}
	return err
}

// SetSort switches the sort mode: all previously loaded pages are
// discarded and loading begins again at page 1. Selecting the current
// mode is a no-op. When a load for the old mode is still in flight its
// completion is discarded and replays the page-1 load for the new mode.
func (f *FeedPager) SetSort(ctx context.Context, sort types.SortMode) error {
	f.mu.Lock()
	if sort == f.sort {
		f.mu.Unlock()
		return nil
	}
	f.posts = nil
	f.page = 0
	f.hasMore = true
	f.sort = sort
	f.gen++
	f.mu.Unlock()
	err := f.Load(ctx, 1, sort)
	if err == ErrBusy {
		// An old-sort fetch is outstanding; its completion sees the
		// generation change and runs this load instead.
		return nil
	}
	return err
}

// Refresh reloads page 1 under the current sort mode.
func (f *FeedPager) Refresh(ctx context.Context) error {
	f.mu.Lock()
	sort := f.sort
	f.mu.Unlock()
	return f.Load(ctx, 1, sort)
}

// Posts returns a copy of the loaded posts in display order.
func (f *FeedPager) Posts() []types.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Post(nil), f.posts...)
}

// Post returns one loaded post by ID.
func (f *FeedPager) Post(id int64) (types.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, post := range f.posts {
		if post.ID == id {
			return post, true
		}
	}
	return types.Post{}, false
}

// UpdatePost applies fn to one loaded post in place. Used by the
// reconciler to install server-confirmed fields.
func (f *FeedPager) UpdatePost(id int64, fn func(*types.Post)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			fn(&f.posts[i])
			return true
		}
	}
	return false
}

// HasMore reports whether the server indicated more pages exist.
func (f *FeedPager) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Loading reports whether a fetch is outstanding.
func (f *FeedPager) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Sort returns the current sort mode.
func (f *FeedPager) Sort() types.SortMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sort
}

// Page returns the highest loaded page number, 0 before the first load.
func (f *FeedPager) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// Cancel prevents any in-flight completion from writing into discarded
// state. Used at component teardown.
func (f *FeedPager) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = true
}

func (f *FeedPager) logf(format string, args ...any) {
	if f.logger == nil {
		return
	}
	f.logger.Printf(format, args...)
}
