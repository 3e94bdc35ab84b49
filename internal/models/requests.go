package models

import "time"

type SortBy string

const (
	SortLatest      SortBy = "latest"
	SortPopular     SortBy = "popular"
	SortTrending    SortBy = "trending"
	SortRecommended SortBy = "recommended"
)

// FeedRequest - критерии ленты; пустые поля не участвуют в фильтрации
type FeedRequest struct {
	Platform            string   `json:"platform,omitempty"`
	Category            string   `json:"category,omitempty"`
	Hashtag             string   `json:"hashtag,omitempty"`
	Search              string   `json:"search,omitempty"`
	MinDurationSeconds  *float64 `json:"minDurationSeconds,omitempty"`
	MaxDurationSeconds  *float64 `json:"maxDurationSeconds,omitempty"`
	FollowingOnly       bool     `json:"followingOnly,omitempty"`
	ExcludeViewed       bool     `json:"excludeViewed,omitempty"`
	ViewerID            string   `json:"viewerId,omitempty"`
	ViewerFollowingList []string `json:"viewerFollowingList,omitempty"`
	SortBy              SortBy   `json:"sortBy,omitempty"`
	Page                int      `json:"page,omitempty"`
	Limit               int      `json:"limit,omitempty"`
}

type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// FeedItem - пост в ответе ленты, без userEngagement
type FeedItem struct {
	ID               string           `json:"id"`
	ArtistID         string           `json:"artistId"`
	Platform         Platform         `json:"platform"`
	Content          string           `json:"content"`
	Title            string           `json:"title,omitempty"`
	Hashtags         []string         `json:"hashtags"`
	Categories       []string         `json:"categories"`
	Media            []Media          `json:"media"`
	Metrics          Metrics          `json:"metrics"`
	Visibility       Visibility       `json:"visibility"`
	ModerationStatus ModerationStatus `json:"moderationStatus"`
	PublishedAt      time.Time        `json:"publishedAt"`
	EngagementScore  float64          `json:"engagementScore"`
	TrendingScore    float64          `json:"trendingScore"`
	IsTrending       bool             `json:"isTrending"`
	IsLikedByViewer  bool             `json:"isLikedByViewer"`
	IsSavedByViewer  bool             `json:"isSavedByViewer"`
}

type FeedPage struct {
	Posts      []FeedItem `json:"posts"`
	Pagination PageInfo   `json:"pagination"`
}

type Action string

const (
	ActionView        Action = "view"
	ActionLike        Action = "like"
	ActionSave        Action = "save"
	ActionComment     Action = "comment"
	ActionShare       Action = "share"
	ActionReply       Action = "reply"
	ActionLikeComment Action = "likeComment"
)

type EngagementPayload struct {
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`
	Body            string   `json:"body,omitempty"`
	CommentID       string   `json:"commentId,omitempty"`
	ReplyID         string   `json:"replyId,omitempty"`
}

type EngagementRequest struct {
	PostID  string            `json:"postId"`
	UserID  string            `json:"userId"`
	Action  Action            `json:"action"`
	Payload EngagementPayload `json:"payload"`
}

// EngagementResult - только значение, относящееся к действию, а не весь пост
type EngagementResult struct {
	Action   Action   `json:"action"`
	Views    *int64   `json:"views,omitempty"`
	Liked    *bool    `json:"liked,omitempty"`
	Likes    *int64   `json:"likes,omitempty"`
	Saved    *bool    `json:"saved,omitempty"`
	Saves    *int64   `json:"saves,omitempty"`
	Shared   *bool    `json:"shared,omitempty"`
	Shares   *int64   `json:"shares,omitempty"`
	Comment  *Comment `json:"comment,omitempty"`
	Comments *int64   `json:"comments,omitempty"`
	Reply    *Reply   `json:"reply,omitempty"`
	Replies  *int64   `json:"replies,omitempty"`
}

// EngagementEvent рассылается подписчикам поста после успешной записи
type EngagementEvent struct {
	PostID string            `json:"postId"`
	UserID string            `json:"userId"`
	Action Action            `json:"action"`
	Result *EngagementResult `json:"result"`
	At     time.Time         `json:"at"`
}

type CommentSort string

const (
	CommentSortLatest  CommentSort = "latest"
	CommentSortPopular CommentSort = "popular"
)

type CommentsRequest struct {
	PostID string      `json:"postId"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
	Sort   CommentSort `json:"sort"`
}

type CommentPage struct {
	Comments   []Comment `json:"comments"`
	Pagination PageInfo  `json:"pagination"`
}

// ViewerState - состояние вовлеченности зрителя по одному посту
type ViewerState struct {
	PostID   string `json:"postId"`
	IsLiked  bool   `json:"isLiked"`
	IsSaved  bool   `json:"isSaved"`
	IsShared bool   `json:"isShared"`
	IsViewed bool   `json:"isViewed"`
}
