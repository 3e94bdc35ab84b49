package feed

import (
	"time"

	"github.com/ButyrinIA/feedrank/internal/models"
)

const (
	weightLike    = 1.0
	weightComment = 2.0
	weightShare   = 3.0
	weightSave    = 1.5
	viewsDivisor  = 1000.0

	trendingMinViews = 1000
	trendingMinRatio = 0.05
	trendingWindow   = 72.0
)

// Scores вычисляются при каждом чтении и никогда не сохраняются
type Scores struct {
	Engagement float64
	Trending   float64
	IsTrending bool
}

// EngagementScore = likes + 2*comments + 3*shares + 1.5*saves + views/1000
func EngagementScore(m models.Metrics) float64 {
	return float64(m.Likes)*weightLike +
		float64(m.Comments)*weightComment +
		float64(m.Shares)*weightShare +
		float64(m.Saves)*weightSave +
		float64(m.Views)/viewsDivisor
}

// IsTrending: больше 1000 просмотров и (likes + 2*comments)/views > 0.05
func IsTrending(m models.Metrics) bool {
	if m.Views <= trendingMinViews {
		return false
	}
	ratio := float64(m.Likes+2*m.Comments) / float64(m.Views)
	return ratio > trendingMinRatio
}

// HoursSince - дробные часы между publishedAt и now, не меньше нуля
func HoursSince(now, publishedAt time.Time) float64 {
	h := now.Sub(publishedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// Score - чистая функция от (metrics, publishedAt, now)
func Score(m models.Metrics, publishedAt, now time.Time) Scores {
	s := Scores{Engagement: EngagementScore(m), IsTrending: IsTrending(m)}
	if s.IsTrending {
		s.Trending = s.Engagement * (trendingWindow / (HoursSince(now, publishedAt) + 1))
	}
	return s
}
