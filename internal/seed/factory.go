package seed

import (
	"fmt"
	"math/rand"
	"time"

	"folio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds fake posts for demo databases.
type Factory struct {
	faker   *gofakeit.Faker
	rng     *rand.Rand
	maxDays int
}

// NewFactory creates a Factory. A zero seed picks one from the clock.
func NewFactory(seed int64, maxDays int) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		faker:   gofakeit.New(seed),
		rng:     rand.New(rand.NewSource(seed)),
		maxDays: maxDays,
	}
}

// BuildPost constructs a post filed under one of categories and written by one
// of authors. It is not persisted.
func (f *Factory) BuildPost(categories []models.Category, authors []models.Profile, overrides ...func(*models.Post)) models.Post {
	title := f.faker.Sentence(5)
	content := f.faker.Paragraph(2, 4, 12, "\n\n")

	post := models.Post{
		ID:            f.faker.UUID(),
		Title:         title,
		Content:       content,
		Excerpt:       f.faker.Sentence(14),
		FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/%s/800/400", f.faker.UUID()),
		Published:     f.rng.Intn(5) != 0,
	}
	if len(categories) > 0 {
		post.CategoryID = categories[f.rng.Intn(len(categories))].ID
	}
	if len(authors) > 0 {
		post.AuthorID = authors[f.rng.Intn(len(authors))].ID
	}

	// realistic created_at spread
	daysBack := f.rng.Intn(f.maxDays)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().UTC().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(&post)
	}
	return post
}

// BuildPosts returns n fake posts.
func (f *Factory) BuildPosts(n int, categories []models.Category, authors []models.Profile) []models.Post {
	out := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildPost(categories, authors))
	}
	return out
}
