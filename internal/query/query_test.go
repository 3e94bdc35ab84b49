package query

import (
	"testing"

	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func basePost() *models.Post {
	return &models.Post{
		ID:               "p1",
		ArtistID:         "a1",
		Platform:         models.PlatformTikTok,
		Content:          "New Single out now",
		Title:            "Release day",
		Hashtags:         []string{"NewMusic", "indie", "#Live"},
		Categories:       []string{"Music"},
		Media:            []models.Media{{URL: "v.mp4", Type: models.MediaVideo, DurationSeconds: 30}},
		Visibility:       models.VisibilityPublic,
		ModerationStatus: models.ModerationApproved,
		UserEngagement:   models.UserEngagement{ViewedBy: []string{"viewer1"}},
	}
}

func TestMatch(t *testing.T) {
	post := basePost()
	base := Predicate{Visibility: models.VisibilityPublic, ModerationStatus: models.ModerationApproved}

	tests := []struct {
		name string
		mod  func(p *Predicate)
		want bool
	}{
		{"base", func(p *Predicate) {}, true},
		{"platform", func(p *Predicate) { p.Platform = "tiktok" }, true},
		{"wrong platform", func(p *Predicate) { p.Platform = "youtube" }, false},
		{"category any case", func(p *Predicate) { p.Category = "music" }, true},
		{"hashtag any case", func(p *Predicate) { p.Hashtag = "newmusic" }, true},
		{"missing hashtag", func(p *Predicate) { p.Hashtag = "jazz" }, false},
		{"stored hashtag with #", func(p *Predicate) { p.Hashtag = "live" }, true},
		{"hashtag with # both sides", func(p *Predicate) { p.Hashtag = "#LIVE" }, true},
		{"category keeps #", func(p *Predicate) { p.Category = "#music" }, false},
		{"search content", func(p *Predicate) { p.Search = "single" }, true},
		{"search title", func(p *Predicate) { p.Search = "release" }, true},
		{"search hashtag", func(p *Predicate) { p.Search = "indi" }, true},
		{"search miss", func(p *Predicate) { p.Search = "podcast" }, false},
		{"min duration", func(p *Predicate) { p.MinDuration = ptr(10) }, true},
		{"min duration too high", func(p *Predicate) { p.MinDuration = ptr(31) }, false},
		{"max duration", func(p *Predicate) { p.MaxDuration = ptr(30) }, true},
		{"max duration too low", func(p *Predicate) { p.MaxDuration = ptr(29) }, false},
		{"following", func(p *Predicate) { p.ArtistIDs = []string{"a1", "a2"} }, true},
		{"not following", func(p *Predicate) { p.ArtistIDs = []string{"a2"} }, false},
		{"viewed", func(p *Predicate) { p.NotViewedBy = "viewer1" }, false},
		{"not viewed", func(p *Predicate) { p.NotViewedBy = "viewer2" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mod(&p)
			assert.Equal(t, tt.want, p.Match(post))
		})
	}
}

func TestMatchBaseGate(t *testing.T) {
	base := Predicate{Visibility: models.VisibilityPublic, ModerationStatus: models.ModerationApproved}

	pending := basePost()
	pending.ModerationStatus = models.ModerationPending
	assert.False(t, base.Match(pending))

	private := basePost()
	private.Visibility = models.VisibilityPrivate
	assert.False(t, base.Match(private))
}

func TestMatchDurationWithoutMedia(t *testing.T) {
	post := basePost()
	post.Media = nil
	p := Predicate{MinDuration: ptr(0)}
	assert.False(t, p.Match(post))
}

func TestKeyIsCanonical(t *testing.T) {
	a := Predicate{ArtistIDs: []string{"b", "a"}, Search: "x"}
	b := Predicate{ArtistIDs: []string{"a", "b"}, Search: "x"}
	assert.Equal(t, a.Key(), b.Key())

	c := Predicate{Search: "x", MinDuration: ptr(1)}
	assert.NotEqual(t, b.Key(), c.Key())
}
