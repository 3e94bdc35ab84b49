// Package storagetest - общий набор проверок для реализаций storage.Storage.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/query"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewPost создает одобренный публичный пост артиста
func NewPost(artistID string, publishedAt time.Time) *models.Post {
	return &models.Post{
		ID:               uuid.New().String(),
		ArtistID:         artistID,
		Platform:         models.PlatformNative,
		Content:          "Тестовый пост",
		Hashtags:         []string{},
		Categories:       []string{},
		Media:            []models.Media{},
		Visibility:       models.VisibilityPublic,
		ModerationStatus: models.ModerationApproved,
		PublishedAt:      publishedAt.UTC().Truncate(time.Millisecond),
	}
}

func scoped(artistID string) query.Predicate {
	return query.Predicate{
		Visibility:       models.VisibilityPublic,
		ModerationStatus: models.ModerationApproved,
		ArtistIDs:        []string{artistID},
	}
}

func fptr(f float64) *float64 { return &f }

// Run прогоняет набор проверок. Каждый подтест работает со своим артистом,
// поэтому хранилище может быть общим.
func Run(t *testing.T, store storage.Storage) {
	ctx := context.Background()

	t.Run("CreatePost and GetPost", func(t *testing.T) {
		post := NewPost(uuid.New().String(), time.Now())
		post.Title = "Заголовок"
		post.Hashtags = []string{"go"}

		require.NoError(t, store.CreatePost(ctx, post), "Ошибка при создании поста")

		retrieved, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err, "Ошибка при получении поста")
		assert.Equal(t, post.ID, retrieved.ID, "ID поста не совпадает")
		assert.Equal(t, post.Title, retrieved.Title, "Заголовок поста не совпадает")
		assert.Equal(t, post.Hashtags, retrieved.Hashtags)
		assert.True(t, post.PublishedAt.Equal(retrieved.PublishedAt), "Время публикации не совпадает")
		assert.EqualValues(t, 1, retrieved.Version)
	})

	t.Run("GetPost Not Found", func(t *testing.T) {
		_, err := store.GetPost(ctx, "non-existent-id")
		require.Error(t, err, "Ожидалась ошибка для несуществующего поста")
		assert.Equal(t, "post not found", err.Error(), "Неверное сообщение об ошибке")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("GetPosts skips missing", func(t *testing.T) {
		artist := uuid.New().String()
		p1 := NewPost(artist, time.Now())
		p2 := NewPost(artist, time.Now())
		require.NoError(t, store.CreatePost(ctx, p1))
		require.NoError(t, store.CreatePost(ctx, p2))

		posts, err := store.GetPosts(ctx, []string{p1.ID, "missing", p2.ID})
		require.NoError(t, err)
		ids := make([]string, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []string{p1.ID, p2.ID}, ids)
	})

	t.Run("FindPosts latest with skip and limit", func(t *testing.T) {
		artist := uuid.New().String()
		now := time.Now()
		var created []*models.Post
		for i := 0; i < 5; i++ {
			p := NewPost(artist, now.Add(-time.Duration(i)*time.Hour))
			require.NoError(t, store.CreatePost(ctx, p))
			created = append(created, p)
		}

		posts, err := store.FindPosts(ctx, query.Query{Predicate: scoped(artist), Latest: true, Skip: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, created[1].ID, posts[0].ID, "Ожидался более новый пост")
		assert.Equal(t, created[2].ID, posts[1].ID)

		all, err := store.FindPosts(ctx, query.Query{Predicate: scoped(artist)})
		require.NoError(t, err)
		assert.Len(t, all, 5)

		total, err := store.CountPosts(ctx, scoped(artist))
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
	})

	t.Run("FindPosts filters", func(t *testing.T) {
		artist := uuid.New().String()
		now := time.Now()

		music := NewPost(artist, now)
		music.Platform = models.PlatformYouTube
		music.Categories = []string{"Music"}
		music.Hashtags = []string{"NewRelease"}
		music.Title = "Studio session"
		music.Media = []models.Media{{URL: "a.mp4", Type: models.MediaVideo, DurationSeconds: 120}}
		music.UserEngagement.ViewedBy = []string{"viewer1"}

		clip := NewPost(artist, now.Add(-time.Minute))
		clip.Platform = models.PlatformTikTok
		clip.Content = "Backstage clip"
		clip.Hashtags = []string{"#Tour"}
		clip.Media = []models.Media{{URL: "b.mp4", Type: models.MediaVideo, DurationSeconds: 15}}

		pending := NewPost(artist, now)
		pending.ModerationStatus = models.ModerationPending

		private := NewPost(artist, now)
		private.Visibility = models.VisibilityPrivate

		for _, p := range []*models.Post{music, clip, pending, private} {
			require.NoError(t, store.CreatePost(ctx, p))
		}

		cases := []struct {
			name string
			mod  func(p *query.Predicate)
			want []string
		}{
			{"base gate", func(p *query.Predicate) {}, []string{music.ID, clip.ID}},
			{"platform", func(p *query.Predicate) { p.Platform = "tiktok" }, []string{clip.ID}},
			{"category", func(p *query.Predicate) { p.Category = "music" }, []string{music.ID}},
			{"hashtag", func(p *query.Predicate) { p.Hashtag = "newrelease" }, []string{music.ID}},
			{"stored hashtag with #", func(p *query.Predicate) { p.Hashtag = "tour" }, []string{clip.ID}},
			{"hashtag with # both sides", func(p *query.Predicate) { p.Hashtag = "#tour" }, []string{clip.ID}},
			{"search title", func(p *query.Predicate) { p.Search = "studio" }, []string{music.ID}},
			{"search content", func(p *query.Predicate) { p.Search = "backstage" }, []string{clip.ID}},
			{"search hashtag", func(p *query.Predicate) { p.Search = "release" }, []string{music.ID}},
			{"min duration", func(p *query.Predicate) { p.MinDuration = fptr(60) }, []string{music.ID}},
			{"max duration", func(p *query.Predicate) { p.MaxDuration = fptr(60) }, []string{clip.ID}},
			{"exclude viewed", func(p *query.Predicate) { p.NotViewedBy = "viewer1" }, []string{clip.ID}},
			{"unknown artist", func(p *query.Predicate) { p.ArtistIDs = []string{"nobody"} }, nil},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				pred := scoped(artist)
				tc.mod(&pred)

				posts, err := store.FindPosts(ctx, query.Query{Predicate: pred, Latest: true})
				require.NoError(t, err)
				ids := make([]string, 0, len(posts))
				for _, p := range posts {
					ids = append(ids, p.ID)
				}
				assert.ElementsMatch(t, tc.want, ids)

				total, err := store.CountPosts(ctx, pred)
				require.NoError(t, err)
				assert.EqualValues(t, len(tc.want), total)
			})
		}
	})

	t.Run("UpdatePost bumps version and detects conflicts", func(t *testing.T) {
		post := NewPost(uuid.New().String(), time.Now())
		require.NoError(t, store.CreatePost(ctx, post))

		loaded, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		version := loaded.Version

		loaded.UserEngagement.Likes = []string{"u1"}
		loaded.Metrics.Likes = 1
		require.NoError(t, store.UpdatePost(ctx, loaded, version))
		assert.Equal(t, version+1, loaded.Version)

		stale := loaded.Clone()
		stale.Metrics.Likes = 99
		err = store.UpdatePost(ctx, stale, version)
		assert.ErrorIs(t, err, storage.ErrConflict)
		assert.True(t, apperr.IsConflict(err))

		reloaded, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, reloaded.Metrics.Likes)
		assert.Equal(t, []string{"u1"}, reloaded.UserEngagement.Likes)
		assert.Equal(t, version+1, reloaded.Version)
	})

	t.Run("UpdatePost Not Found", func(t *testing.T) {
		missing := NewPost(uuid.New().String(), time.Now())
		err := store.UpdatePost(ctx, missing, 1)
		assert.True(t, apperr.IsNotFound(err))
	})
}
