package engagement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/pager"
	"github.com/ButyrinIA/feedrank/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func comment(id string, likes, replies int, createdAt time.Time) models.Comment {
	c := models.Comment{ID: id, CreatedAt: createdAt, Likes: []string{}, Replies: []models.Reply{}}
	for i := 0; i < likes; i++ {
		c.Likes = append(c.Likes, fmt.Sprintf("u%d", i))
	}
	for i := 0; i < replies; i++ {
		c.Replies = append(c.Replies, models.Reply{ID: fmt.Sprintf("%s-r%d", id, i)})
	}
	return c
}

func commentIDs(cs []models.Comment) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestCommentScore(t *testing.T) {
	assert.Equal(t, 5.0, CommentScore(comment("a", 5, 0, base)))
	assert.Equal(t, 5.0, CommentScore(comment("b", 2, 6, base)))
	assert.Equal(t, 0.0, CommentScore(models.Comment{}))
}

func TestRankCommentsPopularTieBreak(t *testing.T) {
	a := comment("a", 5, 0, base)
	b := comment("b", 2, 6, base.Add(time.Minute))

	ranked := RankComments([]models.Comment{a, b}, models.CommentSortPopular)
	assert.Equal(t, []string{"b", "a"}, commentIDs(ranked), "равный счет: новее выше")

	b.CreatedAt = base.Add(-time.Minute)
	ranked = RankComments([]models.Comment{b, a}, models.CommentSortPopular)
	assert.Equal(t, []string{"a", "b"}, commentIDs(ranked))
}

func TestRankCommentsLatest(t *testing.T) {
	in := []models.Comment{
		comment("old", 10, 0, base),
		comment("new", 0, 0, base.Add(2*time.Hour)),
		comment("mid", 3, 1, base.Add(time.Hour)),
	}

	assert.Equal(t, []string{"new", "mid", "old"}, commentIDs(RankComments(in, models.CommentSortLatest)))
	assert.Equal(t, []string{"new", "mid", "old"}, commentIDs(RankComments(in, "whatever")))
	assert.Equal(t, []string{"old", "mid", "new"}, commentIDs(RankComments(in, models.CommentSortPopular)))
	assert.Equal(t, "old", in[0].ID, "исходный срез не меняется")
}

func TestEngineComments(t *testing.T) {
	store := memory.New()
	post := &models.Post{
		ID:               "p1",
		ArtistID:         "artist",
		Visibility:       models.VisibilityPublic,
		ModerationStatus: models.ModerationApproved,
		PublishedAt:      base,
	}
	for i := 0; i < 25; i++ {
		post.UserEngagement.Comments = append(post.UserEngagement.Comments, comment(fmt.Sprintf("c%02d", i), i%3, 0, base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, store.CreatePost(context.Background(), post))

	e := New(store, Options{Pager: pager.Pager{DefaultLimit: 10, MaxLimit: 50}})

	page, err := e.Comments(context.Background(), models.CommentsRequest{PostID: "p1", Page: 3})
	require.NoError(t, err)
	assert.Equal(t, models.PageInfo{Page: 3, Limit: 10, Total: 25, Pages: 3}, page.Pagination)
	assert.Equal(t, []string{"c04", "c03", "c02", "c01", "c00"}, commentIDs(page.Comments))

	beyond, err := e.Comments(context.Background(), models.CommentsRequest{PostID: "p1", Page: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Comments)
	assert.NotNil(t, beyond.Comments)

	_, err = e.Comments(context.Background(), models.CommentsRequest{PostID: "missing"})
	assert.True(t, apperr.IsNotFound(err))

	_, err = e.Comments(context.Background(), models.CommentsRequest{PostID: "p1", Limit: -5})
	assert.True(t, apperr.IsValidation(err))

	_, err = e.Comments(context.Background(), models.CommentsRequest{PostID: "p1", Page: 1 << 62, Limit: 50})
	assert.True(t, apperr.IsValidation(err))
}
