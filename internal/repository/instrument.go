package repository

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/models"
	"folio/internal/observability"
)

// instrumented wraps a PostRepository with metrics, spans and repository logs.
type instrumented struct {
	next    PostRepository
	backend string
	log     *observability.RepoLogger
}

// Instrument decorates repo so every call is counted, timed, traced and logged.
// backend labels the logs and spans ("memory", "postgres").
func Instrument(repo PostRepository, backend string, logger *slog.Logger) PostRepository {
	return &instrumented{
		next:    repo,
		backend: backend,
		log:     observability.NewRepoLogger(logger, backend),
	}
}

func (i *instrumented) observe(ctx context.Context, op Operation) (context.Context, func(error)) {
	span, ctx := observability.StartRepositorySpan(ctx, string(op), i.backend)
	start := time.Now()
	return ctx, func(err error) {
		outcome := observability.OutcomeSuccess
		switch {
		case err != nil && IsCanceled(err):
			outcome = observability.OutcomeCanceled
		case err != nil:
			outcome = observability.OutcomeError
			span.SetError(err)
			i.log.LogError(ctx, err, string(op))
		}
		observability.ObserveRepositoryCall(string(op), outcome, time.Since(start))
		span.End()
	}
}

func (i *instrumented) Initialize(ctx context.Context) (err error) {
	ctx, done := i.observe(ctx, OpInitialize)
	defer func() { done(err) }()
	return i.next.Initialize(ctx)
}

func (i *instrumented) Status() Status {
	return i.next.Status()
}

func (i *instrumented) Posts(ctx context.Context) (posts []models.Post, err error) {
	ctx, done := i.observe(ctx, OpPosts)
	defer func() { done(err) }()
	return i.next.Posts(ctx)
}

func (i *instrumented) Categories(ctx context.Context) (cats []models.Category, err error) {
	ctx, done := i.observe(ctx, OpCategories)
	defer func() { done(err) }()
	return i.next.Categories(ctx)
}

func (i *instrumented) Profiles(ctx context.Context) (profiles []models.Profile, err error) {
	ctx, done := i.observe(ctx, OpProfiles)
	defer func() { done(err) }()
	return i.next.Profiles(ctx)
}

func (i *instrumented) GetByID(ctx context.Context, id string) (post *models.Post, found bool, err error) {
	ctx, done := i.observe(ctx, OpGetByID)
	defer func() { done(err) }()
	return i.next.GetByID(ctx, id)
}

func (i *instrumented) GetByCategory(ctx context.Context, categoryID string) (posts []models.Post, err error) {
	ctx, done := i.observe(ctx, OpGetByCategory)
	defer func() { done(err) }()
	return i.next.GetByCategory(ctx, categoryID)
}

func (i *instrumented) Search(ctx context.Context, query string) (posts []models.Post, err error) {
	ctx, done := i.observe(ctx, OpSearch)
	defer func() { done(err) }()
	posts, err = i.next.Search(ctx, query)
	if err == nil {
		i.log.LogRead(ctx, string(OpSearch), map[string]any{"query": query, "results": len(posts)})
	}
	return posts, err
}

func (i *instrumented) Create(ctx context.Context, draft models.PostDraft) (post *models.Post, err error) {
	ctx, done := i.observe(ctx, OpCreate)
	defer func() { done(err) }()
	post, err = i.next.Create(ctx, draft)
	if err == nil {
		i.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "category_id": post.CategoryID})
	}
	return post, err
}

func (i *instrumented) Update(ctx context.Context, id string, patch models.PostPatch) (post *models.Post, found bool, err error) {
	ctx, done := i.observe(ctx, OpUpdate)
	defer func() { done(err) }()
	post, found, err = i.next.Update(ctx, id, patch)
	if err == nil {
		i.log.LogUpdate(ctx, map[string]any{"post_id": id, "found": found})
	}
	return post, found, err
}

func (i *instrumented) Delete(ctx context.Context, id string) (removed bool, err error) {
	ctx, done := i.observe(ctx, OpDelete)
	defer func() { done(err) }()
	removed, err = i.next.Delete(ctx, id)
	if err == nil {
		i.log.LogDelete(ctx, map[string]any{"post_id": id, "removed": removed})
	}
	return removed, err
}
