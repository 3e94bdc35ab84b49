package feed

import (
	"strings"

	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/query"
)

// CompileFilter переводит критерии запроса ленты в предикат хранилища.
// Базовое условие всегда: visibility=public и moderationStatus=approved.
func CompileFilter(req models.FeedRequest) query.Predicate {
	p := query.Predicate{
		Visibility:       models.VisibilityPublic,
		ModerationStatus: models.ModerationApproved,
		Platform:         normalize(req.Platform),
		Category:         normalize(req.Category),
		Hashtag:          strings.TrimPrefix(normalize(req.Hashtag), "#"),
		Search:           normalize(req.Search),
	}

	if req.MinDurationSeconds != nil {
		v := *req.MinDurationSeconds
		p.MinDuration = &v
	}
	if req.MaxDurationSeconds != nil {
		v := *req.MaxDurationSeconds
		p.MaxDuration = &v
	}

	// Пустой список подписок - "ни на кого не подписан, покажи все", а не пустая лента
	if req.FollowingOnly && len(req.ViewerFollowingList) > 0 {
		p.ArtistIDs = append([]string(nil), req.ViewerFollowingList...)
	}

	if req.ExcludeViewed && req.ViewerID != "" {
		p.NotViewedBy = req.ViewerID
	}

	return p
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
