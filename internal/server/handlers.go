package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleToken выдает токен для локальной разработки
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		s.writeError(w, r, apperr.Validation("userId is required"))
		return
	}
	token, err := s.tokens.generateToken(userID)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := s.feedRequest(w, r)
	if !ok {
		return
	}
	page, err := s.feed.Feed(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := s.feedRequest(w, r)
	if !ok {
		return
	}
	page, err := s.feed.Trending(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	page, err := intParam(q, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.engagement.Comments(r.Context(), models.CommentsRequest{
		PostID: ps.ByName("id"),
		Page:   page,
		Limit:  limit,
		Sort:   models.CommentSort(q.Get("sort")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type engagementBody struct {
	Action  models.Action            `json:"action"`
	Payload models.EngagementPayload `json:"payload"`
}

func (s *Server) handleEngagement(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := s.tokens.viewer(r)
	if err != nil {
		unauthorized(w, err)
		return
	}
	if userID == "" {
		unauthorized(w, errMissingToken)
		return
	}

	var body engagementBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, r, apperr.Validation("invalid request body"))
		return
	}

	result, err := s.engagement.Apply(r.Context(), models.EngagementRequest{
		PostID:  ps.ByName("id"),
		UserID:  userID,
		Action:  body.Action,
		Payload: body.Payload,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type viewerStateBody struct {
	IDs []string `json:"ids"`
}

type viewerStateResponse struct {
	States []models.ViewerState `json:"states"`
}

const maxViewerStateIDs = 100

// handleViewerState возвращает состояние зрителя по нескольким постам;
// отсутствующие посты пропускаются
func (s *Server) handleViewerState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := s.tokens.viewer(r)
	if err != nil {
		unauthorized(w, err)
		return
	}
	if userID == "" {
		unauthorized(w, errMissingToken)
		return
	}

	var body viewerStateBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, r, apperr.Validation("invalid request body"))
		return
	}
	if len(body.IDs) > maxViewerStateIDs {
		s.writeError(w, r, apperr.Validation(fmt.Sprintf("at most %d ids per request", maxViewerStateIDs)))
		return
	}

	loader := newPostLoader(s.storage)
	posts, errs := loader.LoadMany(r.Context(), body.IDs)()

	states := make([]models.ViewerState, 0, len(body.IDs))
	for i, post := range posts {
		if i < len(errs) && errs[i] != nil {
			if apperr.IsNotFound(errs[i]) {
				continue
			}
			s.writeError(w, r, errs[i])
			return
		}
		if post == nil {
			continue
		}
		states = append(states, viewerState(post, userID))
	}
	writeJSON(w, http.StatusOK, viewerStateResponse{States: states})
}

func viewerState(post *models.Post, userID string) models.ViewerState {
	ue := post.UserEngagement
	return models.ViewerState{
		PostID:   post.ID,
		IsLiked:  models.Contains(ue.Likes, userID),
		IsSaved:  models.Contains(ue.Saves, userID),
		IsShared: models.Contains(ue.Shares, userID),
		IsViewed: models.Contains(ue.ViewedBy, userID),
	}
}

// feedRequest разбирает параметры ленты; при ошибке ответ уже записан
func (s *Server) feedRequest(w http.ResponseWriter, r *http.Request) (models.FeedRequest, bool) {
	viewerID, err := s.tokens.viewer(r)
	if err != nil {
		unauthorized(w, err)
		return models.FeedRequest{}, false
	}
	req, err := parseFeedQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return models.FeedRequest{}, false
	}
	req.ViewerID = viewerID
	return req, true
}

func parseFeedQuery(q url.Values) (models.FeedRequest, error) {
	req := models.FeedRequest{
		Platform: q.Get("platform"),
		Category: q.Get("category"),
		Hashtag:  q.Get("hashtag"),
		Search:   q.Get("search"),
		SortBy:   models.SortBy(q.Get("sortBy")),
	}

	var err error
	if req.MinDurationSeconds, err = floatParam(q, "minDuration"); err != nil {
		return req, err
	}
	if req.MaxDurationSeconds, err = floatParam(q, "maxDuration"); err != nil {
		return req, err
	}
	if req.FollowingOnly, err = boolParam(q, "followingOnly"); err != nil {
		return req, err
	}
	if req.ExcludeViewed, err = boolParam(q, "excludeViewed"); err != nil {
		return req, err
	}
	if req.Page, err = intParam(q, "page"); err != nil {
		return req, err
	}
	if req.Limit, err = intParam(q, "limit"); err != nil {
		return req, err
	}
	for _, id := range strings.Split(q.Get("following"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.ViewerFollowingList = append(req.ViewerFollowingList, id)
		}
	}
	return req, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

func floatParam(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("%s must be a number", key))
	}
	return &f, nil
}

func boolParam(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperr.Validation(fmt.Sprintf("%s must be a boolean", key))
	}
	return b, nil
}
