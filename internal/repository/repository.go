// Package repository provides the post store contract and its implementations.
package repository

import (
	"context"

	"folio/internal/models"
)

// Operation names a repository call. It labels metrics, spans and fault hooks.
type Operation string

const (
	OpInitialize    Operation = "initialize"
	OpPosts         Operation = "posts"
	OpCategories    Operation = "categories"
	OpProfiles      Operation = "profiles"
	OpGetByID       Operation = "get_by_id"
	OpGetByCategory Operation = "get_by_category"
	OpSearch        Operation = "search"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpDelete        Operation = "delete"
)

// PostRepository holds the authoritative list of posts and categories.
//
// Reads never fail for a missing record: GetByID reports absence through its
// bool result. Update and Delete on an unknown id are silent no-ops that
// report false. Every call returns its own result; Status is only a coarse
// indicator of in-flight work and the last failure.
type PostRepository interface {
	Initialize(ctx context.Context) error
	Status() Status

	Posts(ctx context.Context) ([]models.Post, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Profiles(ctx context.Context) ([]models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Post, bool, error)
	GetByCategory(ctx context.Context, categoryID string) ([]models.Post, error)
	Search(ctx context.Context, query string) ([]models.Post, error)

	Create(ctx context.Context, draft models.PostDraft) (*models.Post, error)
	Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// FaultFunc lets tests make a simulated backend call fail. A non-nil return
// aborts the operation before it changes any state.
type FaultFunc func(ctx context.Context, op Operation) error
