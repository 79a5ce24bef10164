package models

import "time"

// Category is a named grouping that posts reference by id.
type Category struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Name        string    `gorm:"not null" json:"name" yaml:"name"`
	Slug        string    `gorm:"index" json:"slug" yaml:"slug"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// CategorySummary is a category together with the number of posts filed under it.
type CategorySummary struct {
	Category
	PostCount int `json:"post_count"`
}
