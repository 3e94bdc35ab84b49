package engagement

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
)

const replyWeight = 0.5

// CommentScore = |likes| + 0.5*|replies|; лайки ответов не учитываются
func CommentScore(c models.Comment) float64 {
	return float64(len(c.Likes)) + replyWeight*float64(len(c.Replies))
}

// ResolveCommentSort: неизвестное значение означает latest
func ResolveCommentSort(s models.CommentSort) models.CommentSort {
	if models.CommentSort(strings.ToLower(string(s))) == models.CommentSortPopular {
		return models.CommentSortPopular
	}
	return models.CommentSortLatest
}

// RankComments сортирует копию списка; исходный срез не меняется
func RankComments(comments []models.Comment, sortBy models.CommentSort) []models.Comment {
	out := make([]models.Comment, len(comments))
	copy(out, comments)

	switch ResolveCommentSort(sortBy) {
	case models.CommentSortPopular:
		sort.SliceStable(out, func(i, j int) bool {
			si, sj := CommentScore(out[i]), CommentScore(out[j])
			if si != sj {
				return si > sj
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Comments возвращает страницу комментариев поста. Комментарии хранятся
// внутри поста, поэтому сортировка и пагинация выполняются в памяти.
func (e *Engine) Comments(ctx context.Context, req models.CommentsRequest) (*models.CommentPage, error) {
	if strings.TrimSpace(req.PostID) == "" {
		return nil, apperr.Validation("postId is required")
	}
	page, err := e.pager.Normalize(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	post, err := e.store.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %s: %w", req.PostID, err)
	}

	ranked := RankComments(post.UserEngagement.Comments, req.Sort)
	start, end := page.Slice(len(ranked))
	return &models.CommentPage{
		Comments:   ranked[start:end],
		Pagination: page.Info(int64(len(ranked))),
	}, nil
}
