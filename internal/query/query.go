// Package query содержит нормализованный предикат, который фильтр ленты
// передает хранилищу постов, и его эталонную проверку в памяти.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/models"
)

// Predicate - конъюнкция условий; пустые поля не ограничивают выборку.
// Строковые поля уже приведены к нижнему регистру.
type Predicate struct {
	Visibility       models.Visibility
	ModerationStatus models.ModerationStatus
	Platform         string
	Category         string
	Hashtag          string
	Search           string
	MinDuration      *float64
	MaxDuration      *float64
	ArtistIDs        []string
	NotViewedBy      string
}

// Query - предикат плюс опциональная сортировка по publishedAt desc и skip/limit.
// Limit == 0 означает без ограничения.
type Query struct {
	Predicate Predicate
	Latest    bool
	Skip      int
	Limit     int
}

// HasDuration сообщает, ограничена ли длительность первого медиа
func (p Predicate) HasDuration() bool {
	return p.MinDuration != nil || p.MaxDuration != nil
}

// Match проверяет пост на соответствие предикату
func (p Predicate) Match(post *models.Post) bool {
	if p.Visibility != "" && post.Visibility != p.Visibility {
		return false
	}
	if p.ModerationStatus != "" && post.ModerationStatus != p.ModerationStatus {
		return false
	}
	if p.Platform != "" && strings.ToLower(string(post.Platform)) != p.Platform {
		return false
	}
	if p.Category != "" && !containsFold(post.Categories, p.Category) {
		return false
	}
	if p.Hashtag != "" && !containsTag(post.Hashtags, p.Hashtag) {
		return false
	}
	if p.HasDuration() {
		if len(post.Media) == 0 {
			return false
		}
		d := post.Media[0].DurationSeconds
		if p.MinDuration != nil && d < *p.MinDuration {
			return false
		}
		if p.MaxDuration != nil && d > *p.MaxDuration {
			return false
		}
	}
	if p.Search != "" && !matchSearch(post, p.Search) {
		return false
	}
	if len(p.ArtistIDs) > 0 && !models.Contains(p.ArtistIDs, post.ArtistID) {
		return false
	}
	if p.NotViewedBy != "" && models.Contains(post.UserEngagement.ViewedBy, p.NotViewedBy) {
		return false
	}
	return true
}

// Key - каноническое представление предиката, ключ для кэша счетчиков
func (p Predicate) Key() string {
	var b strings.Builder
	field := func(name, v string) {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(v))
		b.WriteByte(';')
	}
	field("vis", string(p.Visibility))
	field("mod", string(p.ModerationStatus))
	field("platform", p.Platform)
	field("category", p.Category)
	field("hashtag", p.Hashtag)
	field("search", p.Search)
	if p.MinDuration != nil {
		field("min", strconv.FormatFloat(*p.MinDuration, 'g', -1, 64))
	}
	if p.MaxDuration != nil {
		field("max", strconv.FormatFloat(*p.MaxDuration, 'g', -1, 64))
	}
	if len(p.ArtistIDs) > 0 {
		ids := append([]string(nil), p.ArtistIDs...)
		sort.Strings(ids)
		field("artists", strings.Join(ids, ","))
	}
	field("notViewedBy", p.NotViewedBy)
	return b.String()
}

func matchSearch(post *models.Post, needle string) bool {
	if strings.Contains(strings.ToLower(post.Content), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(post.Title), needle) {
		return true
	}
	for _, h := range post.Hashtags {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

// containsTag сравнивает хэштеги без учета регистра и ведущих '#'
func containsTag(set []string, v string) bool {
	v = strings.TrimLeft(v, "#")
	for _, s := range set {
		if strings.EqualFold(strings.TrimLeft(s, "#"), v) {
			return true
		}
	}
	return false
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
