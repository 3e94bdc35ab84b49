package feed

import (
	"testing"

	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCompileFilterBase(t *testing.T) {
	p := CompileFilter(models.FeedRequest{})
	assert.Equal(t, models.VisibilityPublic, p.Visibility)
	assert.Equal(t, models.ModerationApproved, p.ModerationStatus)
	assert.Empty(t, p.Platform)
	assert.Empty(t, p.Search)
	assert.Nil(t, p.ArtistIDs)
	assert.Empty(t, p.NotViewedBy)
	assert.False(t, p.HasDuration())
}

func TestCompileFilterNormalizes(t *testing.T) {
	lo, hi := 5.0, 60.0
	p := CompileFilter(models.FeedRequest{
		Platform:           "TikTok",
		Category:           " Music ",
		Hashtag:            "#NewMusic",
		Search:             "  Live Set ",
		MinDurationSeconds: &lo,
		MaxDurationSeconds: &hi,
	})

	assert.Equal(t, "tiktok", p.Platform)
	assert.Equal(t, "music", p.Category)
	assert.Equal(t, "newmusic", p.Hashtag)
	assert.Equal(t, "live set", p.Search)
	assert.Equal(t, 5.0, *p.MinDuration)
	assert.Equal(t, 60.0, *p.MaxDuration)

	lo = 100
	assert.Equal(t, 5.0, *p.MinDuration, "предикат не должен делить указатели с запросом")
}

func TestCompileFilterFollowing(t *testing.T) {
	p := CompileFilter(models.FeedRequest{FollowingOnly: true, ViewerFollowingList: []string{"a1", "a2"}})
	assert.Equal(t, []string{"a1", "a2"}, p.ArtistIDs)

	empty := CompileFilter(models.FeedRequest{FollowingOnly: true})
	assert.Nil(t, empty.ArtistIDs, "пустой список подписок не ограничивает ленту")

	ignored := CompileFilter(models.FeedRequest{ViewerFollowingList: []string{"a1"}})
	assert.Nil(t, ignored.ArtistIDs)
}

func TestCompileFilterExcludeViewed(t *testing.T) {
	p := CompileFilter(models.FeedRequest{ExcludeViewed: true, ViewerID: "v1"})
	assert.Equal(t, "v1", p.NotViewedBy)

	anon := CompileFilter(models.FeedRequest{ExcludeViewed: true})
	assert.Empty(t, anon.NotViewedBy)
}
