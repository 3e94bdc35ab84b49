package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/query"
	"github.com/ButyrinIA/feedrank/internal/storage"
)

type MemoryStorage struct {
	posts map[string]*models.Post
	mu    sync.RWMutex
}

func New() *MemoryStorage {
	return &MemoryStorage{
		posts: make(map[string]*models.Post),
	}
}

func (s *MemoryStorage) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[post.ID]; exists {
		return apperr.Conflict("post already exists")
	}
	if post.Version == 0 {
		post.Version = 1
	}
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *MemoryStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, storage.ErrPostNotFound
	}
	return post.Clone(), nil
}

func (s *MemoryStorage) GetPosts(ctx context.Context, ids []string) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if post, exists := s.posts[id]; exists {
			result = append(result, post.Clone())
		}
	}
	return result, nil
}

func (s *MemoryStorage) FindPosts(ctx context.Context, q query.Query) ([]*models.Post, error) {
	s.mu.RLock()
	var posts []*models.Post
	for _, post := range s.posts {
		if q.Predicate.Match(post) {
			posts = append(posts, post.Clone())
		}
	}
	s.mu.RUnlock()

	// Порядок карты случайный, поэтому сортируем всегда
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})

	start := q.Skip
	if start < 0 || start > len(posts) {
		start = len(posts)
	}
	end := len(posts)
	if q.Limit > 0 && q.Limit < end-start {
		end = start + q.Limit
	}
	return posts[start:end], nil
}

func (s *MemoryStorage) CountPosts(ctx context.Context, p query.Predicate) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, post := range s.posts {
		if p.Match(post) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.posts[post.ID]
	if !exists {
		return storage.ErrPostNotFound
	}
	if current.Version != expectedVersion {
		return storage.ErrConflict
	}
	post.Version = expectedVersion + 1
	s.posts[post.ID] = post.Clone()
	return nil
}

// Close очищает хранилище
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make(map[string]*models.Post)
	return nil
}
