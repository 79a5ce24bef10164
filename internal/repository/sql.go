package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLRepository stores posts in a relational database through gorm. Post
// lookups and the category list go through the Redis cache when one is configured.
type SQLRepository struct {
	settings

	db       *gorm.DB
	status   statusTracker
	initMu   sync.Mutex
	initDone bool
	initErr  error
}

// NewSQLRepository creates a repository over db. Latency options are ignored.
func NewSQLRepository(db *gorm.DB, opts ...Option) *SQLRepository {
	return &SQLRepository{settings: newSettings(opts), db: db}
}

// Initialize migrates the schema and seeds the dataset into an empty database.
// Only the first completed call does any work; a cancelled call leaves the
// repository uninitialized.
func (r *SQLRepository) Initialize(ctx context.Context) error {
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

func (r *SQLRepository) load(ctx context.Context) error {
	r.status.begin()

	err := r.migrateAndSeed(ctx)
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

	r.status.finishInit("")
	return nil
}

func (r *SQLRepository) migrateAndSeed(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.injectFault(ctx, OpInitialize); err != nil {
		return err
	}

	tx := r.db.WithContext(ctx)
	if err := tx.AutoMigrate(&models.Category{}, &models.Profile{}, &models.Post{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var count int64
	if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	ds, err := r.loader(ctx)
	if err != nil {
		return err
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		if len(ds.Categories) > 0 {
			if err := tx.Create(&ds.Categories).Error; err != nil {
				return err
			}
		}
		if len(ds.Profiles) > 0 {
			if err := tx.Create(&ds.Profiles).Error; err != nil {
				return err
			}
		}
		if len(ds.Posts) > 0 {
			if err := tx.Omit(clause.Associations).Create(&ds.Posts).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	r.logger.InfoContext(ctx, "blog data seeded",
		slog.Int("posts", len(ds.Posts)),
		slog.Int("categories", len(ds.Categories)),
	)
	return nil
}

// Status reports the shared loading/error indicator.
func (r *SQLRepository) Status() Status {
	return r.status.snapshot()
}

func (r *SQLRepository) posts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		Order("created_at DESC").
		Order("id")
}

// Posts returns every post, newest first.
func (r *SQLRepository) Posts(ctx context.Context) ([]models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	posts := []models.Post{}
	if err := r.posts(ctx).Find(&posts).Error; err != nil {
		return nil, models.NewFetchError(err)
	}
	return posts, nil
}

// Categories returns every category.
func (r *SQLRepository) Categories(ctx context.Context) ([]models.Category, error) {
	cats := []models.Category{}
	err := cache.Aside(ctx, cache.CategoriesKey, &cats, cache.CategoriesTTL, func() error {
		defer observability.TrackQuery("select", "categories")()
		return r.db.WithContext(ctx).Order("id").Find(&cats).Error
	})
	if err != nil {
		return nil, models.NewFetchError(err)
	}
	return cats, nil
}

// Profiles returns every author profile.
func (r *SQLRepository) Profiles(ctx context.Context) ([]models.Profile, error) {
	defer observability.TrackQuery("select", "profiles")()
	profiles := []models.Profile{}
	if err := r.db.WithContext(ctx).Order("id").Find(&profiles).Error; err != nil {
		return nil, models.NewFetchError(err)
	}
	return profiles, nil
}

// GetByID looks a post up by id.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Post, bool, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		defer observability.TrackQuery("select", "posts")()
		return r.posts(ctx).First(&post, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, models.NewFetchError(err)
	}
	return &post, true, nil
}

// GetByCategory returns the posts filed under categoryID, newest first.
func (r *SQLRepository) GetByCategory(ctx context.Context, categoryID string) ([]models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	posts := []models.Post{}
	if err := r.posts(ctx).Where("category_id = ?", categoryID).Find(&posts).Error; err != nil {
		return nil, models.NewFetchError(err)
	}
	return posts, nil
}

// Search returns posts whose title, content or excerpt contains query,
// ignoring case.
func (r *SQLRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	defer observability.TrackQuery("search", "posts")()
	like := "%" + escapeLike(strings.ToLower(query)) + "%"
	posts := []models.Post{}
	err := r.posts(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(excerpt) LIKE ? ESCAPE '\'`, like, like, like).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewFetchError(err)
	}
	return posts, nil
}

// Create inserts a post and returns it with its category and author attached.
func (r *SQLRepository) Create(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	var created models.Post
	err := r.mutate(ctx, OpCreate, models.NewCreateError, func(tx *gorm.DB) error {
		id, err := r.uniqueID(tx)
		if err != nil {
			return err
		}
		p := models.NewPost(id, draft, r.now())
		if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
			return err
		}
		return r.reload(tx, id, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges patch into the stored post. An unknown id changes nothing and
// reports false.
func (r *SQLRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, bool, error) {
	var updated *models.Post
	err := r.mutate(ctx, OpUpdate, models.NewUpdateError, func(tx *gorm.DB) error {
		var p models.Post
		err := tx.First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		p.Apply(patch)
		p.UpdatedAt = nextUpdateTime(r.now(), p.UpdatedAt)
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return err
		}

		var out models.Post
		if err := r.reload(tx, id, &out); err != nil {
			return err
		}
		updated = &out
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if updated != nil {
		cache.InvalidatePost(ctx, id)
	}
	return updated, updated != nil, nil
}

// Delete removes the post with the given id and reports whether it existed.
func (r *SQLRepository) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.mutate(ctx, OpDelete, models.NewDeleteError, func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	cache.InvalidatePost(ctx, id)
	return removed, nil
}

func (r *SQLRepository) mutate(ctx context.Context, op Operation, wrap func(error) *models.AppError, apply func(tx *gorm.DB) error) error {
	if !r.status.isInitialized() {
		return models.NewNotReadyError("Blog data is still loading")
	}

	r.status.begin()
	err := r.injectFault(ctx, op)
	if err == nil {
		defer observability.TrackQuery(string(op), "posts")()
		err = r.db.WithContext(ctx).Transaction(apply)
	}
	if err != nil {
		if IsCanceled(err) {
			r.status.abandon()
			return wrap(err)
		}
		appErr := wrap(err)
		r.status.fail(appErr.Message)
		r.logger.ErrorContext(ctx, "post mutation failed",
			slog.String("operation", string(op)),
			slog.String("error", err.Error()),
		)
		return appErr
	}

	r.status.succeed()
	return nil
}

func (r *SQLRepository) uniqueID(tx *gorm.DB) (string, error) {
	for {
		id := r.newID()
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return id, nil
		}
	}
}

func (r *SQLRepository) reload(tx *gorm.DB, id string, dest *models.Post) error {
	return tx.Preload("Category").Preload("Author").First(dest, "id = ?", id).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
