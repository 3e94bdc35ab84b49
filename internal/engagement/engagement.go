// Package engagement применяет действия пользователей к посту: просмотр,
// лайк, сохранение, комментарий, репост, ответ и лайк комментария.
// Множество пользователей и его счетчик в Metrics меняются одной записью.
package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/pager"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxBodyLength       = 2000
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 10 * time.Millisecond
)

// Notifier получает событие после каждой успешной записи
type Notifier interface {
	Publish(evt models.EngagementEvent)
}

type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Pager        pager.Pager
	Notifier     Notifier
}

// Engine сериализует записи по посту: локальная таблица блокировок плюс
// проверка версии в хранилище на случай нескольких процессов
type Engine struct {
	store    storage.Storage
	locks    *lockTable
	pager    pager.Pager
	retries  int
	backoff  time.Duration
	notifier Notifier
	now      func() time.Time
	newID    func() string
	log      *logrus.Entry
}

func New(store storage.Storage, opts Options) *Engine {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	return &Engine{
		store:    store,
		locks:    newLockTable(),
		pager:    opts.Pager,
		retries:  opts.MaxRetries,
		backoff:  opts.RetryBackoff,
		notifier: opts.Notifier,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		log:      logger.For("engagement"),
	}
}

// WithClock подменяет источник времени для createdAt комментариев
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Apply загружает пост, применяет ровно одно действие и сохраняет результат.
// Конфликт версий повторяется не более MaxRetries раз, затем возвращается вызывающему.
func (e *Engine) Apply(ctx context.Context, req models.EngagementRequest) (*models.EngagementResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := validate(req); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(req.PostID)
	defer unlock()

	var result *models.EngagementResult
	for attempt := 0; ; attempt++ {
		post, err := e.store.GetPost(ctx, req.PostID)
		if err != nil {
			return nil, fmt.Errorf("failed to load post %s: %w", req.PostID, err)
		}
		version := post.Version

		result, err = e.mutate(post, req)
		if err != nil {
			return nil, err
		}

		err = e.store.UpdatePost(ctx, post, version)
		if err == nil {
			break
		}
		if !apperr.IsConflict(err) || attempt >= e.retries {
			return nil, fmt.Errorf("failed to apply %s to post %s: %w", req.Action, req.PostID, err)
		}

		e.log.WithFields(logrus.Fields{
			"postId":  req.PostID,
			"action":  req.Action,
			"attempt": attempt + 1,
		}).Warn("конфликт версий, повторяем запись")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.backoff * time.Duration(attempt+1)):
		}
	}

	if e.notifier != nil {
		e.notifier.Publish(models.EngagementEvent{
			PostID: req.PostID,
			UserID: req.UserID,
			Action: req.Action,
			Result: result,
			At:     e.now(),
		})
	}
	return result, nil
}

// validate проверяет запрос до обращения к хранилищу
func validate(req models.EngagementRequest) error {
	if strings.TrimSpace(req.PostID) == "" {
		return apperr.Validation("postId is required")
	}
	if req.UserID == "" {
		return apperr.Validation("userId is required")
	}

	p := req.Payload
	switch req.Action {
	case models.ActionLike, models.ActionSave, models.ActionShare:
	case models.ActionView:
		if p.DurationSeconds != nil && *p.DurationSeconds < 0 {
			return apperr.Validation("durationSeconds must be >= 0")
		}
	case models.ActionComment:
		return validateBody(p.Body)
	case models.ActionReply:
		if p.CommentID == "" {
			return apperr.Validation("commentId is required")
		}
		return validateBody(p.Body)
	case models.ActionLikeComment:
		if p.CommentID == "" {
			return apperr.Validation("commentId is required")
		}
	default:
		return apperr.Validation(fmt.Sprintf("unknown action %q", req.Action))
	}
	return nil
}

func validateBody(body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return apperr.Validation("comment body must not be empty")
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return apperr.Validation(fmt.Sprintf("comment body exceeds %d characters", maxBodyLength))
	}
	return nil
}

// mutate меняет загруженную копию поста; запрос уже проверен
func (e *Engine) mutate(post *models.Post, req models.EngagementRequest) (*models.EngagementResult, error) {
	ue := &post.UserEngagement
	m := &post.Metrics
	res := &models.EngagementResult{Action: req.Action}

	switch req.Action {
	case models.ActionView:
		var d float64
		if req.Payload.DurationSeconds != nil {
			d = *req.Payload.DurationSeconds
		}
		recordView(ue, req.UserID, d)
		ue.ViewedBy, _ = models.AddUnique(ue.ViewedBy, req.UserID)
		m.Views++
		res.Views = ptr(m.Views)

	case models.ActionLike:
		var liked bool
		ue.Likes, liked = models.Toggle(ue.Likes, req.UserID)
		m.Likes += delta(liked)
		res.Liked, res.Likes = ptr(liked), ptr(m.Likes)

	case models.ActionSave:
		var saved bool
		ue.Saves, saved = models.Toggle(ue.Saves, req.UserID)
		m.Saves += delta(saved)
		res.Saved, res.Saves = ptr(saved), ptr(m.Saves)

	case models.ActionShare:
		var added bool
		ue.Shares, added = models.AddUnique(ue.Shares, req.UserID)
		if added {
			m.Shares++
		}
		res.Shared, res.Shares = ptr(true), ptr(m.Shares)

	case models.ActionComment:
		c := models.Comment{
			ID:        e.newID(),
			AuthorID:  req.UserID,
			Body:      strings.TrimSpace(req.Payload.Body),
			CreatedAt: e.now().UTC(),
			Likes:     []string{},
			Replies:   []models.Reply{},
		}
		ue.Comments = append(ue.Comments, c)
		m.Comments++
		res.Comment, res.Comments = &c, ptr(m.Comments)

	case models.ActionReply:
		i := post.FindComment(req.Payload.CommentID)
		if i < 0 {
			return nil, apperr.NotFound("comment not found")
		}
		r := models.Reply{
			ID:        e.newID(),
			AuthorID:  req.UserID,
			Body:      strings.TrimSpace(req.Payload.Body),
			CreatedAt: e.now().UTC(),
			Likes:     []string{},
		}
		c := &ue.Comments[i]
		c.Replies = append(c.Replies, r)
		res.Reply, res.Replies = &r, ptr(int64(len(c.Replies)))

	case models.ActionLikeComment:
		i := post.FindComment(req.Payload.CommentID)
		if i < 0 {
			return nil, apperr.NotFound("comment not found")
		}
		c := &ue.Comments[i]
		likes := &c.Likes
		if req.Payload.ReplyID != "" {
			j := findReply(c.Replies, req.Payload.ReplyID)
			if j < 0 {
				return nil, apperr.NotFound("reply not found")
			}
			likes = &c.Replies[j].Likes
		}
		var liked bool
		*likes, liked = models.Toggle(*likes, req.UserID)
		res.Liked, res.Likes = ptr(liked), ptr(int64(len(*likes)))
	}
	return res, nil
}

// recordView накапливает длительность просмотров пользователя в одной записи
func recordView(ue *models.UserEngagement, userID string, d float64) {
	for i := range ue.Views {
		if ue.Views[i].UserID == userID {
			ue.Views[i].DurationSeconds += d
			return
		}
	}
	ue.Views = append(ue.Views, models.ViewRecord{UserID: userID, DurationSeconds: d})
}

func findReply(replies []models.Reply, id string) int {
	for i := range replies {
		if replies[i].ID == id {
			return i
		}
	}
	return -1
}

func delta(added bool) int64 {
	if added {
		return 1
	}
	return -1
}

func ptr[T any](v T) *T { return &v }
