package storage

import (
	"context"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/query"
)

var (
	ErrPostNotFound = apperr.NotFound("post not found")
	ErrConflict     = apperr.Conflict("post was modified concurrently")
)

// Storage - хранилище постов. Каждая запись увеличивает Post.Version;
// UpdatePost отклоняет запись с ErrConflict, если версия уже сдвинулась.
type Storage interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPosts(ctx context.Context, ids []string) ([]*models.Post, error)
	FindPosts(ctx context.Context, q query.Query) ([]*models.Post, error)
	CountPosts(ctx context.Context, p query.Predicate) (int64, error)
	UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error
	Close() error
}
