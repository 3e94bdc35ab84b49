package feed

import (
	"sort"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/models"
)

// Scored - кандидат ленты вместе с оценками на момент запроса
type Scored struct {
	Post   *models.Post
	Scores Scores
}

// Comparator сообщает, должен ли a стоять раньше b
type Comparator func(a, b *Scored) bool

// ResolveSort приводит sortBy к известному режиму; неизвестное значение - latest
func ResolveSort(sortBy models.SortBy) models.SortBy {
	switch s := models.SortBy(strings.ToLower(strings.TrimSpace(string(sortBy)))); s {
	case models.SortPopular, models.SortTrending, models.SortRecommended:
		return s
	}
	return models.SortLatest
}

// SelectComparator возвращает порядок для режима; publishedAt desc всегда разрешает ничьи.
// recommended совпадает с popular: модели персонализации нет.
func SelectComparator(sortBy models.SortBy) Comparator {
	switch ResolveSort(sortBy) {
	case models.SortPopular, models.SortRecommended:
		return byScore(func(s *Scored) float64 { return s.Scores.Engagement })
	case models.SortTrending:
		return byScore(func(s *Scored) float64 { return s.Scores.Trending })
	}
	return newerFirst
}

// Order сортирует кандидатов на месте, сохраняя исходный порядок при полном равенстве
func Order(items []Scored, sortBy models.SortBy) {
	less := SelectComparator(sortBy)
	sort.SliceStable(items, func(i, j int) bool {
		return less(&items[i], &items[j])
	})
}

func newerFirst(a, b *Scored) bool {
	return a.Post.PublishedAt.After(b.Post.PublishedAt)
}

func byScore(score func(*Scored) float64) Comparator {
	return func(a, b *Scored) bool {
		sa, sb := score(a), score(b)
		if sa != sb {
			return sa > sb
		}
		return newerFirst(a, b)
	}
}
