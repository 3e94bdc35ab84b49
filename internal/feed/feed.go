// Package feed собирает ленту: фильтр -> хранилище -> оценки -> сортировка -> страница.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/pager"
	"github.com/ButyrinIA/feedrank/internal/query"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service не хранит изменяемого состояния; запросы выполняются параллельно
type Service struct {
	store storage.Storage
	pager pager.Pager
	now   func() time.Time
	log   *logrus.Entry
}

func NewService(store storage.Storage, pg pager.Pager) *Service {
	return &Service{store: store, pager: pg, now: time.Now, log: logger.For("feed")}
}

// WithClock подменяет источник времени
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Feed возвращает страницу ленты. Данные и общее количество запрашиваются
// независимо, total может слегка отставать при конкурентных записях.
func (s *Service) Feed(ctx context.Context, req models.FeedRequest) (*models.FeedPage, error) {
	page, err := s.pager.Normalize(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}
	pred := CompileFilter(req)
	mode := ResolveSort(req.SortBy)
	now := s.now()

	var (
		items []Scored
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.CountPosts(gctx, pred)
		if err != nil {
			return fmt.Errorf("failed to count posts: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.load(gctx, pred, mode, page, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"sortBy": mode,
		"page":   page.Page,
		"limit":  page.Limit,
		"total":  total,
	}).Debug("лента собрана")

	return &models.FeedPage{
		Posts:      toItems(items, req.ViewerID),
		Pagination: page.Info(total),
	}, nil
}

// Trending - те же фильтры, но только трендовые посты по trendingScore.
// Тренд определяется в момент чтения, поэтому total считается по кандидатам.
func (s *Service) Trending(ctx context.Context, req models.FeedRequest) (*models.FeedPage, error) {
	page, err := s.pager.Normalize(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}
	now := s.now()

	candidates, err := s.store.FindPosts(ctx, query.Query{Predicate: CompileFilter(req)})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	trending := make([]Scored, 0, len(candidates))
	for _, post := range candidates {
		sc := Score(post.Metrics, post.PublishedAt, now)
		if sc.IsTrending {
			trending = append(trending, Scored{Post: post, Scores: sc})
		}
	}
	Order(trending, models.SortTrending)

	start, end := page.Slice(len(trending))
	return &models.FeedPage{
		Posts:      toItems(trending[start:end], req.ViewerID),
		Pagination: page.Info(int64(len(trending))),
	}, nil
}

// load: для latest сортировка и пагинация уходят в хранилище,
// для остальных режимов оценки считаются по всем кандидатам
func (s *Service) load(ctx context.Context, pred query.Predicate, mode models.SortBy, page pager.Page, now time.Time) ([]Scored, error) {
	if mode == models.SortLatest {
		posts, err := s.store.FindPosts(ctx, query.Query{
			Predicate: pred,
			Latest:    true,
			Skip:      page.Skip(),
			Limit:     page.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find posts: %w", err)
		}
		return scoreAll(posts, now), nil
	}

	candidates, err := s.store.FindPosts(ctx, query.Query{Predicate: pred})
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	items := scoreAll(candidates, now)
	Order(items, mode)

	start, end := page.Slice(len(items))
	return items[start:end], nil
}

func scoreAll(posts []*models.Post, now time.Time) []Scored {
	items := make([]Scored, len(posts))
	for i, post := range posts {
		items[i] = Scored{Post: post, Scores: Score(post.Metrics, post.PublishedAt, now)}
	}
	return items
}

func toItems(items []Scored, viewerID string) []models.FeedItem {
	out := make([]models.FeedItem, len(items))
	for i, it := range items {
		p := it.Post
		out[i] = models.FeedItem{
			ID:               p.ID,
			ArtistID:         p.ArtistID,
			Platform:         p.Platform,
			Content:          p.Content,
			Title:            p.Title,
			Hashtags:         p.Hashtags,
			Categories:       p.Categories,
			Media:            p.Media,
			Metrics:          p.Metrics,
			Visibility:       p.Visibility,
			ModerationStatus: p.ModerationStatus,
			PublishedAt:      p.PublishedAt,
			EngagementScore:  it.Scores.Engagement,
			TrendingScore:    it.Scores.Trending,
			IsTrending:       it.Scores.IsTrending,
		}
		if viewerID != "" {
			out[i].IsLikedByViewer = models.Contains(p.UserEngagement.Likes, viewerID)
			out[i].IsSavedByViewer = models.Contains(p.UserEngagement.Saves, viewerID)
		}
	}
	return out
}
