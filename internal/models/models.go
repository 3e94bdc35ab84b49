package models

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformSpotify   Platform = "spotify"
	PlatformNative    Platform = "native"
)

// ParsePlatform возвращает платформу из закрытого множества, регистр не важен
func ParsePlatform(s string) (Platform, bool) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformInstagram, PlatformTikTok, PlatformTwitter, PlatformYouTube, PlatformSpotify, PlatformNative:
		return p, true
	}
	return "", false
}

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

type Media struct {
	URL             string    `json:"url" bson:"url"`
	Type            MediaType `json:"type" bson:"type"`
	Thumbnail       string    `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	DurationSeconds float64   `json:"durationSeconds" bson:"durationSeconds"`
}

// Metrics - денормализованные счетчики, всегда согласованы с UserEngagement
type Metrics struct {
	Likes    int64 `json:"likes" bson:"likes"`
	Comments int64 `json:"comments" bson:"comments"`
	Shares   int64 `json:"shares" bson:"shares"`
	Saves    int64 `json:"saves" bson:"saves"`
	Views    int64 `json:"views" bson:"views"`
}

// ViewRecord накапливает длительность просмотров одного пользователя
type ViewRecord struct {
	UserID          string  `json:"userId" bson:"userId"`
	DurationSeconds float64 `json:"durationSeconds" bson:"durationSeconds"`
}

type Reply struct {
	ID        string    `json:"id" bson:"id"`
	AuthorID  string    `json:"authorId" bson:"authorId"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Likes     []string  `json:"likes" bson:"likes"`
}

type Comment struct {
	ID        string    `json:"id" bson:"id"`
	AuthorID  string    `json:"authorId" bson:"authorId"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Likes     []string  `json:"likes" bson:"likes"`
	Replies   []Reply   `json:"replies" bson:"replies"`
}

// UserEngagement хранит множества пользователей; множества представлены срезами без дублей
type UserEngagement struct {
	Likes    []string     `json:"likes" bson:"likes"`
	Saves    []string     `json:"saves" bson:"saves"`
	Shares   []string     `json:"shares" bson:"shares"`
	Comments []Comment    `json:"comments" bson:"comments"`
	Views    []ViewRecord `json:"views" bson:"views"`
	ViewedBy []string     `json:"viewedBy" bson:"viewedBy"`
}

type Post struct {
	ID               string           `json:"id" bson:"_id"`
	ArtistID         string           `json:"artistId" bson:"artistId"`
	Platform         Platform         `json:"platform" bson:"platform"`
	Content          string           `json:"content" bson:"content"`
	Title            string           `json:"title,omitempty" bson:"title,omitempty"`
	Hashtags         []string         `json:"hashtags" bson:"hashtags"`
	Categories       []string         `json:"categories" bson:"categories"`
	Media            []Media          `json:"media" bson:"media"`
	Metrics          Metrics          `json:"metrics" bson:"metrics"`
	UserEngagement   UserEngagement   `json:"userEngagement" bson:"userEngagement"`
	Visibility       Visibility       `json:"visibility" bson:"visibility"`
	ModerationStatus ModerationStatus `json:"moderationStatus" bson:"moderationStatus"`
	PublishedAt      time.Time        `json:"publishedAt" bson:"publishedAt"`
	Version          int64            `json:"-" bson:"version"`
}

// FeedEligible - пост попадает в ленту только одобренным и публичным
func (p *Post) FeedEligible() bool {
	return p.Visibility == VisibilityPublic && p.ModerationStatus == ModerationApproved
}

// FindComment возвращает индекс комментария или -1
func (p *Post) FindComment(id string) int {
	for i := range p.UserEngagement.Comments {
		if p.UserEngagement.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// Normalize заменяет nil-срезы пустыми, чтобы документ в хранилище не содержал null вместо массивов
func (p *Post) Normalize() {
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Media == nil {
		p.Media = []Media{}
	}
	ue := &p.UserEngagement
	if ue.Likes == nil {
		ue.Likes = []string{}
	}
	if ue.Saves == nil {
		ue.Saves = []string{}
	}
	if ue.Shares == nil {
		ue.Shares = []string{}
	}
	if ue.ViewedBy == nil {
		ue.ViewedBy = []string{}
	}
	if ue.Views == nil {
		ue.Views = []ViewRecord{}
	}
	if ue.Comments == nil {
		ue.Comments = []Comment{}
	}
	for i := range ue.Comments {
		c := &ue.Comments[i]
		if c.Likes == nil {
			c.Likes = []string{}
		}
		if c.Replies == nil {
			c.Replies = []Reply{}
		}
		for j := range c.Replies {
			if c.Replies[j].Likes == nil {
				c.Replies[j].Likes = []string{}
			}
		}
	}
}

// Clone делает глубокую копию, чтобы хранилища не делили срезы с вызывающим кодом
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Hashtags = cloneStrings(p.Hashtags)
	c.Categories = cloneStrings(p.Categories)
	if p.Media != nil {
		c.Media = append([]Media(nil), p.Media...)
	}
	ue := &c.UserEngagement
	ue.Likes = cloneStrings(p.UserEngagement.Likes)
	ue.Saves = cloneStrings(p.UserEngagement.Saves)
	ue.Shares = cloneStrings(p.UserEngagement.Shares)
	ue.ViewedBy = cloneStrings(p.UserEngagement.ViewedBy)
	if p.UserEngagement.Views != nil {
		ue.Views = append([]ViewRecord(nil), p.UserEngagement.Views...)
	}
	if p.UserEngagement.Comments != nil {
		ue.Comments = make([]Comment, len(p.UserEngagement.Comments))
		for i, cm := range p.UserEngagement.Comments {
			cm.Likes = cloneStrings(cm.Likes)
			if cm.Replies != nil {
				replies := make([]Reply, len(cm.Replies))
				for j, r := range cm.Replies {
					r.Likes = cloneStrings(r.Likes)
					replies[j] = r
				}
				cm.Replies = replies
			}
			ue.Comments[i] = cm
		}
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// Contains проверяет членство во множестве
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Toggle добавляет или удаляет v; возвращает новое множество и признак присутствия
func Toggle(set []string, v string) ([]string, bool) {
	for i, s := range set {
		if s == v {
			return append(set[:i:i], set[i+1:]...), false
		}
	}
	return append(set, v), true
}

// AddUnique добавляет v, если его еще нет; возвращает признак добавления
func AddUnique(set []string, v string) ([]string, bool) {
	if Contains(set, v) {
		return set, false
	}
	return append(set, v), true
}
