// Package service holds the blog's business rules on top of the post repository.
package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/repository"
)

const (
	maxTitleLen        = 300
	maxContentLen      = 50000
	maxPerPage         = 100
	DefaultPerPage     = 6
	DefaultRecentCount = 3
	maxRelatedPosts    = 3
)

// EventPublisher delivers post change events. notifications.Notifier implements it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type BlogService struct {
	repo    repository.PostRepository
	events  EventPublisher
	flags   *featureflags.Manager
	perPage int
	log     *observability.ServiceLogger
}

type CreatePostInput struct {
	Title         string
	Content       string
	Excerpt       string
	FeaturedImage string
	CategoryID    string
	AuthorID      string
	Published     bool
}

type UpdatePostInput struct {
	PostID        string
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	CategoryID    *string
	AuthorID      *string
	Published     *bool
}

type ListPostsInput struct {
	Query      string
	CategoryID string
	Published  *bool
	Page       int
	PerPage    int
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// PostDetail is a post together with others from its category.
type PostDetail struct {
	Post    models.Post   `json:"post"`
	Related []models.Post `json:"related"`
}

// NewBlogService wires the service. events and flags may be nil; perPage <= 0
// selects DefaultPerPage.
func NewBlogService(repo repository.PostRepository, events EventPublisher, flags *featureflags.Manager, perPage int) *BlogService {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &BlogService{
		repo:    repo,
		events:  events,
		flags:   flags,
		perPage: perPage,
		log:     observability.NewServiceLogger(middleware.Logger, "blog"),
	}
}

// Status passes the repository status through.
func (s *BlogService) Status() repository.Status {
	return s.repo.Status()
}

func (s *BlogService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	draft := models.PostDraft{
		Title:         strings.TrimSpace(in.Title),
		Content:       strings.TrimSpace(in.Content),
		Excerpt:       strings.TrimSpace(in.Excerpt),
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		CategoryID:    strings.TrimSpace(in.CategoryID),
		AuthorID:      strings.TrimSpace(in.AuthorID),
		Published:     in.Published,
	}

	if draft.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if draft.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if draft.CategoryID == "" {
		return nil, models.NewValidationError("Category is required")
	}
	if err := checkLengths(&draft.Title, &draft.Content); err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.log.LogServiceCall(ctx, "CreatePost", map[string]any{"post_id": post.ID})
	s.publish(ctx, notifications.EventPostCreated, post)
	return post, nil
}

func (s *BlogService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	patch := models.PostPatch{
		Title:         trimmed(in.Title),
		Content:       trimmed(in.Content),
		Excerpt:       trimmed(in.Excerpt),
		FeaturedImage: trimmed(in.FeaturedImage),
		CategoryID:    trimmed(in.CategoryID),
		AuthorID:      trimmed(in.AuthorID),
		Published:     in.Published,
	}

	if patch.IsEmpty() {
		return nil, models.NewValidationError("No fields to update")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}
	if patch.Content != nil && *patch.Content == "" {
		return nil, models.NewValidationError("Content cannot be empty")
	}
	if patch.CategoryID != nil && *patch.CategoryID == "" {
		return nil, models.NewValidationError("Category cannot be empty")
	}
	if err := checkLengths(patch.Title, patch.Content); err != nil {
		return nil, err
	}

	post, found, err := s.repo.Update(ctx, in.PostID, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	s.log.LogServiceCall(ctx, "UpdatePost", map[string]any{"post_id": post.ID})
	s.publish(ctx, notifications.EventPostUpdated, post)
	return post, nil
}

func (s *BlogService) DeletePost(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("Post", id)
	}

	s.log.LogServiceCall(ctx, "DeletePost", map[string]any{"post_id": id})
	s.publish(ctx, notifications.EventPostDeleted, map[string]string{"id": id})
	return nil
}

// ListPosts returns one page of posts. A search query takes precedence over
// the category filter.
func (s *BlogService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	var (
		posts []models.Post
		err   error
	)
	switch {
	case strings.TrimSpace(in.Query) != "":
		posts, err = s.repo.Search(ctx, strings.TrimSpace(in.Query))
	case in.CategoryID != "":
		posts, err = s.repo.GetByCategory(ctx, in.CategoryID)
	default:
		posts, err = s.repo.Posts(ctx)
	}
	if err != nil {
		return nil, err
	}

	if in.Published != nil {
		want := *in.Published
		posts = slices.DeleteFunc(posts, func(p models.Post) bool { return p.Published != want })
	}

	return paginate(posts, in.Page, s.clampPerPage(in.PerPage)), nil
}

// GetPost returns a post and, when the related_posts flag is on for subject,
// up to three other posts from the same category.
func (s *BlogService) GetPost(ctx context.Context, id, subject string) (*PostDetail, error) {
	post, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Post", id)
	}

	detail := &PostDetail{Post: *post, Related: []models.Post{}}
	if post.CategoryID == "" || !s.flags.Enabled(featureflags.RelatedPosts, subject) {
		return detail, nil
	}

	sameCategory, err := s.repo.GetByCategory(ctx, post.CategoryID)
	if err != nil {
		return nil, err
	}
	for _, p := range sameCategory {
		if p.ID == post.ID {
			continue
		}
		detail.Related = append(detail.Related, p)
		if len(detail.Related) == maxRelatedPosts {
			break
		}
	}
	return detail, nil
}

// PostsByCategory returns every post in a category. An unknown category is NOT_FOUND.
func (s *BlogService) PostsByCategory(ctx context.Context, categoryID string) ([]models.Post, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(cats, func(c models.Category) bool { return c.ID == categoryID }) {
		return nil, models.NewNotFoundError("Category", categoryID)
	}
	return s.repo.GetByCategory(ctx, categoryID)
}

// CategorySummaries returns every category with the number of posts in it.
func (s *BlogService) CategorySummaries(ctx context.Context) ([]models.CategorySummary, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.repo.Posts(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(cats))
	for _, p := range posts {
		counts[p.CategoryID]++
	}

	out := make([]models.CategorySummary, 0, len(cats))
	for _, c := range cats {
		out = append(out, models.CategorySummary{Category: c, PostCount: counts[c.ID]})
	}
	return out, nil
}

// RecentPosts returns the newest n posts; n <= 0 means DefaultRecentCount.
func (s *BlogService) RecentPosts(ctx context.Context, n int) ([]models.Post, error) {
	if n <= 0 {
		n = DefaultRecentCount
	}
	posts, err := s.repo.Posts(ctx)
	if err != nil {
		return nil, err
	}
	return posts[:min(n, len(posts))], nil
}

// FeatureFlags returns the evaluated flags for subject.
func (s *BlogService) FeatureFlags(subject string) map[string]bool {
	if s.flags == nil {
		return map[string]bool{}
	}
	return s.flags.Snapshot(subject)
}

func (s *BlogService) clampPerPage(n int) int {
	if n <= 0 {
		return s.perPage
	}
	return min(n, maxPerPage)
}

func (s *BlogService) publish(ctx context.Context, eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish post event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

func paginate(posts []models.Post, page, perPage int) *PostPage {
	total := len(posts)
	totalPages := (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}

	// pages past the end are empty
	start := total
	if page <= totalPages {
		start = (page - 1) * perPage
	}
	end := min(start+perPage, total)

	return &PostPage{
		Posts:      slices.Clone(posts[start:end]),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

func checkLengths(title, content *string) error {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if content != nil && utf8.RuneCountInString(*content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
