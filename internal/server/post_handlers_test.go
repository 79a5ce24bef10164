package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/internal/config"
	"folio/internal/models"
	"folio/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Initialize(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPostRepository) Status() repository.Status {
	return repository.Status{State: repository.StateReady}
}

func (m *MockPostRepository) Posts(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Categories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockPostRepository) Profiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Post), args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) GetByCategory(ctx context.Context, categoryID string) ([]models.Post, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, bool, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Post), args.Bool(1), args.Error(2)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{Port: "0", FeatureFlags: "related_posts=on", PostsPerPage: 6}
}

func newTestApp(repo repository.PostRepository) (*Server, *fiber.App) {
	s := NewServerWithDeps(testConfig(), repo, nil, nil)
	return s, s.NewApp()
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		mockSetup      func(m *MockPostRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: map[string]any{"title": "New Post", "content": "Hello world", "category_id": "1"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(d models.PostDraft) bool {
					return d.Title == "New Post" && d.CategoryID == "1"
				})).Return(&models.Post{ID: "abc", Title: "New Post"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing Fields",
			body:           map[string]any{"title": ""},
			mockSetup:      func(*MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
		{
			name: "Repository Failure",
			body: map[string]any{"title": "t", "content": "c", "category_id": "1"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, models.NewCreateError(errors.New("boom")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   models.CodeCreateFailed,
		},
		{
			name: "Not Ready",
			body: map[string]any{"title": "t", "content": "c", "category_id": "1"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, models.NewNotReadyError("Blog data is still loading"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   models.CodeNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPostRepository)
			tt.mockSetup(repo)
			_, app := newTestApp(repo)

			resp := doJSON(t, app, http.MethodPost, "/api/posts", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedCode != "" {
				body := decodeBody[models.ErrorResponse](t, resp)
				assert.Equal(t, tt.expectedCode, body.Code)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCreatePost_InvalidBody(t *testing.T) {
	_, app := newTestApp(new(MockPostRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePost(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, false, nil)
	repo.On("Update", mock.Anything, "1", mock.MatchedBy(func(p models.PostPatch) bool {
		return p.Title != nil && *p.Title == "Renamed" && p.Content == nil
	})).Return(&models.Post{ID: "1", Title: "Renamed", UpdatedAt: time.Now()}, true, nil)
	_, app := newTestApp(repo)

	resp := doJSON(t, app, http.MethodPut, "/api/posts/missing", map[string]any{"title": "Renamed"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/posts/1", map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)
	assert.Equal(t, "Renamed", post.Title)

	resp = doJSON(t, app, http.MethodPut, "/api/posts/1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	repo.AssertExpectations(t)
}

func TestDeletePost(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Delete", mock.Anything, "1").Return(true, nil)
	repo.On("Delete", mock.Anything, "2").Return(false, nil)
	repo.On("Delete", mock.Anything, "3").Return(false, models.NewDeleteError(errors.New("boom")))
	_, app := newTestApp(repo)

	assert.Equal(t, http.StatusNoContent, doJSON(t, app, http.MethodDelete, "/api/posts/1", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, doJSON(t, app, http.MethodDelete, "/api/posts/2", nil).StatusCode)
	assert.Equal(t, http.StatusInternalServerError, doJSON(t, app, http.MethodDelete, "/api/posts/3", nil).StatusCode)
}

func TestGetPost_NotFound(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("GetByID", mock.Anything, "nope").Return(nil, false, nil)
	_, app := newTestApp(repo)

	resp := doJSON(t, app, http.MethodGet, "/api/posts/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeNotFound, body.Code)
}

func TestGetPosts_InvalidPublished(t *testing.T) {
	_, app := newTestApp(new(MockPostRepository))

	resp := doJSON(t, app, http.MethodGet, "/api/posts?published=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPosts_FetchFailure(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Posts", mock.Anything).Return([]models.Post(nil), models.NewFetchError(errors.New("db down")))
	_, app := newTestApp(repo)

	resp := doJSON(t, app, http.MethodGet, "/api/posts", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeFetchFailed, body.Code)
	assert.Equal(t, "db down", body.Details)
}
