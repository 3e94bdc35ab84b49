package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	set, added := Toggle(nil, "u1")
	assert.True(t, added)
	assert.Equal(t, []string{"u1"}, set)

	set, added = Toggle(set, "u2")
	assert.True(t, added)

	set, added = Toggle(set, "u1")
	assert.False(t, added)
	assert.Equal(t, []string{"u2"}, set)
}

func TestToggleDoesNotAlias(t *testing.T) {
	orig := []string{"a", "b", "c"}
	_, _ = Toggle(orig, "a")
	assert.Equal(t, []string{"a", "b", "c"}, orig, "исходный срез не должен меняться")
}

func TestAddUnique(t *testing.T) {
	set, added := AddUnique(nil, "u1")
	assert.True(t, added)
	set, added = AddUnique(set, "u1")
	assert.False(t, added)
	assert.Len(t, set, 1)
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform(" TikTok ")
	assert.True(t, ok)
	assert.Equal(t, PlatformTikTok, p)

	_, ok = ParsePlatform("myspace")
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	post := &Post{
		ID:       "p1",
		Hashtags: []string{"go"},
		UserEngagement: UserEngagement{
			Likes: []string{"u1"},
			Comments: []Comment{{
				ID:        "c1",
				CreatedAt: time.Now(),
				Likes:     []string{"u2"},
				Replies:   []Reply{{ID: "r1", Likes: []string{"u3"}}},
			}},
		},
	}

	c := post.Clone()
	c.Hashtags[0] = "rust"
	c.UserEngagement.Likes[0] = "x"
	c.UserEngagement.Comments[0].Likes[0] = "x"
	c.UserEngagement.Comments[0].Replies[0].Likes[0] = "x"

	assert.Equal(t, "go", post.Hashtags[0])
	assert.Equal(t, "u1", post.UserEngagement.Likes[0])
	assert.Equal(t, "u2", post.UserEngagement.Comments[0].Likes[0])
	assert.Equal(t, "u3", post.UserEngagement.Comments[0].Replies[0].Likes[0])
	assert.Equal(t, 0, post.FindComment("c1"))
	assert.Equal(t, -1, post.FindComment("nope"))
}

func TestFeedEligible(t *testing.T) {
	p := &Post{Visibility: VisibilityPublic, ModerationStatus: ModerationApproved}
	assert.True(t, p.FeedEligible())
	p.ModerationStatus = ModerationPending
	assert.False(t, p.FeedEligible())
}
