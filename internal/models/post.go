// Package models contains data structures for the blog's domain models.
package models

import (
	"time"
)

// Post is a blog article with its publishing metadata.
type Post struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Title         string    `gorm:"not null" json:"title" yaml:"title"`
	Content       string    `gorm:"type:text;not null" json:"content" yaml:"content"`
	Excerpt       string    `gorm:"type:text" json:"excerpt" yaml:"excerpt"`
	FeaturedImage string    `json:"featured_image,omitempty" yaml:"featured_image,omitempty"`
	CategoryID    string    `gorm:"index;type:varchar(64)" json:"category_id" yaml:"category_id"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty" yaml:"-"`
	AuthorID      string    `gorm:"index;type:varchar(64)" json:"author_id" yaml:"author_id"`
	Author        *Profile  `gorm:"foreignKey:AuthorID" json:"author,omitempty" yaml:"-"`
	Published     bool      `gorm:"not null" json:"published" yaml:"published"`
	CreatedAt     time.Time `gorm:"index;autoCreateTime:false" json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false" json:"updated_at" yaml:"updated_at"`
}

// PostDraft is the input for creating a post. Identity and timestamps are
// assigned by the repository.
type PostDraft struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	FeaturedImage string `json:"featured_image,omitempty"`
	CategoryID    string `json:"category_id"`
	AuthorID      string `json:"author_id"`
	Published     bool   `json:"published"`
}

// PostPatch is a partial update. Nil fields are left unchanged; ID and
// CreatedAt have no patch field.
type PostPatch struct {
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	Excerpt       *string `json:"excerpt,omitempty"`
	FeaturedImage *string `json:"featured_image,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	AuthorID      *string `json:"author_id,omitempty"`
	Published     *bool   `json:"published,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Excerpt == nil &&
		p.FeaturedImage == nil && p.CategoryID == nil && p.AuthorID == nil &&
		p.Published == nil
}

// NewPost builds a post from a draft with the given identity and timestamp.
func NewPost(id string, d PostDraft, now time.Time) Post {
	return Post{
		ID:            id,
		Title:         d.Title,
		Content:       d.Content,
		Excerpt:       d.Excerpt,
		FeaturedImage: d.FeaturedImage,
		CategoryID:    d.CategoryID,
		AuthorID:      d.AuthorID,
		Published:     d.Published,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Apply merges the non-nil fields of patch into the post. Timestamps are not touched.
func (p *Post) Apply(patch PostPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.FeaturedImage != nil {
		p.FeaturedImage = *patch.FeaturedImage
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.AuthorID != nil {
		p.AuthorID = *patch.AuthorID
	}
	if patch.Published != nil {
		p.Published = *patch.Published
	}
}

// Clone returns a copy of the post. The denormalized category and author are
// copied too so the caller cannot reach shared state through them.
func (p Post) Clone() Post {
	out := p
	if p.Category != nil {
		c := *p.Category
		out.Category = &c
	}
	if p.Author != nil {
		a := *p.Author
		out.Author = &a
	}
	return out
}
