package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"folio/internal/models"
	"folio/internal/seed"
)

// MemoryRepository keeps posts in process memory. It stands in for a real
// backend: every call waits a fixed latency, and nothing survives a restart.
type MemoryRepository struct {
	settings

	mu         sync.RWMutex
	posts      []models.Post // newest first
	categories []models.Category
	profiles   []models.Profile

	status   statusTracker
	initMu   sync.Mutex
	initDone bool
	initErr  error
}

// NewMemoryRepository creates an empty, uninitialized repository.
func NewMemoryRepository(opts ...Option) *MemoryRepository {
	return &MemoryRepository{settings: newSettings(opts)}
}

// Initialize loads the seed dataset. The first completed call does the work;
// later and concurrent calls wait for it and return its result. A call whose
// context ends first changes nothing, and the next call loads again.
func (r *MemoryRepository) Initialize(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.initDone {
		return r.initErr
	}

	err := r.load(ctx)
	if IsCanceled(err) {
		return err
	}
	r.initDone, r.initErr = true, err
	return err
}

func (r *MemoryRepository) load(ctx context.Context) error {
	r.status.begin()

	ds, err := r.fetch(ctx)
	if IsCanceled(err) {
		r.status.abandon()
		return models.NewFetchError(err)
	}
	if err != nil {
		appErr := models.NewFetchError(err)
		r.status.finishInit(appErr.Message)
		r.logger.ErrorContext(ctx, "blog data fetch failed", slog.String("error", err.Error()))
		return appErr
	}

	r.mu.Lock()
	r.categories = slices.Clone(ds.Categories)
	r.profiles = slices.Clone(ds.Profiles)
	r.posts = make([]models.Post, 0, len(ds.Posts))
	for _, p := range ds.Posts {
		p = p.Clone()
		r.hydrate(&p)
		r.posts = append(r.posts, p)
	}
	r.mu.Unlock()

	r.status.finishInit("")
	r.logger.InfoContext(ctx, "blog data loaded",
		slog.Int("posts", len(ds.Posts)),
		slog.Int("categories", len(ds.Categories)),
	)
	return nil
}

func (r *MemoryRepository) fetch(ctx context.Context) (seed.Dataset, error) {
	if err := sleepContext(ctx, r.fetchLatency); err != nil {
		return seed.Dataset{}, err
	}
	if err := r.injectFault(ctx, OpInitialize); err != nil {
		return seed.Dataset{}, err
	}
	return r.loader(ctx)
}

// Status reports the shared loading/error indicator.
func (r *MemoryRepository) Status() Status {
	return r.status.snapshot()
}

// Posts returns every post, newest first.
func (r *MemoryRepository) Posts(_ context.Context) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(models.Post) bool { return true }), nil
}

// Categories returns the seeded categories.
func (r *MemoryRepository) Categories(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

// Profiles returns the seeded authors.
func (r *MemoryRepository) Profiles(_ context.Context) ([]models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Profile, len(r.profiles))
	copy(out, r.profiles)
	return out, nil
}

// GetByID looks a post up by id.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Post, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, false, nil
	}
	p := r.posts[i].Clone()
	return &p, true, nil
}

// GetByCategory returns the posts filed under categoryID, in repository order.
func (r *MemoryRepository) GetByCategory(_ context.Context, categoryID string) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p models.Post) bool { return p.CategoryID == categoryID }), nil
}

// Search returns posts whose title, content or excerpt contains query,
// ignoring case. The empty query matches everything.
func (r *MemoryRepository) Search(_ context.Context, query string) ([]models.Post, error) {
	q := strings.ToLower(query)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p models.Post) bool { return matchesQuery(p, q) }), nil
}

// Create adds a post at the front of the list.
func (r *MemoryRepository) Create(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	var created models.Post
	err := r.mutate(ctx, OpCreate, models.NewCreateError, func() {
		id := r.newID()
		for r.indexOf(id) >= 0 {
			id = r.newID()
		}
		p := models.NewPost(id, draft, r.now())
		r.hydrate(&p)
		r.posts = slices.Insert(r.posts, 0, p)
		created = p.Clone()
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges patch into the post with the given id. An unknown id leaves
// the collection untouched and reports false.
func (r *MemoryRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, bool, error) {
	var updated *models.Post
	err := r.mutate(ctx, OpUpdate, models.NewUpdateError, func() {
		i := r.indexOf(id)
		if i < 0 {
			return
		}
		p := r.posts[i]
		p.Apply(patch)
		p.UpdatedAt = nextUpdateTime(r.now(), p.UpdatedAt)
		r.hydrate(&p)
		r.posts[i] = p

		out := p.Clone()
		updated = &out
	})
	if err != nil {
		return nil, false, err
	}
	return updated, updated != nil, nil
}

// Delete removes the post with the given id and reports whether it existed.
func (r *MemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.mutate(ctx, OpDelete, models.NewDeleteError, func() {
		i := r.indexOf(id)
		if i < 0 {
			return
		}
		r.posts = slices.Delete(r.posts, i, i+1)
		removed = true
	})
	return removed, err
}

// mutate runs apply under the write lock after the simulated latency, keeping
// the shared status in step.
func (r *MemoryRepository) mutate(ctx context.Context, op Operation, wrap func(error) *models.AppError, apply func()) error {
	if !r.status.isInitialized() {
		return models.NewNotReadyError("Blog data is still loading")
	}

	r.status.begin()
	if err := sleepContext(ctx, r.mutateLatency); err != nil {
		r.status.abandon()
		return wrap(err)
	}
	if err := r.injectFault(ctx, op); err != nil {
		appErr := wrap(err)
		r.status.fail(appErr.Message)
		r.logger.ErrorContext(ctx, "post mutation failed",
			slog.String("operation", string(op)),
			slog.String("error", err.Error()),
		)
		return appErr
	}

	r.mu.Lock()
	apply()
	r.mu.Unlock()

	r.status.succeed()
	return nil
}

// filter must be called with at least a read lock held.
func (r *MemoryRepository) filter(keep func(models.Post) bool) []models.Post {
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (r *MemoryRepository) indexOf(id string) int {
	return slices.IndexFunc(r.posts, func(p models.Post) bool { return p.ID == id })
}

// hydrate attaches the denormalized category and author when they are known.
func (r *MemoryRepository) hydrate(p *models.Post) {
	p.Category = nil
	if i := slices.IndexFunc(r.categories, func(c models.Category) bool { return c.ID == p.CategoryID }); i >= 0 {
		c := r.categories[i]
		p.Category = &c
	}
	p.Author = nil
	if i := slices.IndexFunc(r.profiles, func(a models.Profile) bool { return a.ID == p.AuthorID }); i >= 0 {
		a := r.profiles[i]
		p.Author = &a
	}
}

func matchesQuery(p models.Post, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Content), lowered) ||
		strings.Contains(strings.ToLower(p.Excerpt), lowered)
}

// IsCanceled reports whether err came from a caller giving up rather than from
// the backend.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
