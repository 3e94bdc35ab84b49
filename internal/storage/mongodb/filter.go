package mongodb

import (
	"regexp"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// compile переводит предикат в фильтр коллекции posts
func compile(p query.Predicate) bson.M {
	filter := bson.M{}

	if p.Visibility != "" {
		filter["visibility"] = string(p.Visibility)
	}
	if p.ModerationStatus != "" {
		filter["moderationStatus"] = string(p.ModerationStatus)
	}
	if p.Platform != "" {
		filter["platform"] = p.Platform
	}
	if p.Category != "" {
		filter["categories"] = exact(p.Category)
	}
	if p.Hashtag != "" {
		filter["hashtags"] = hashtag(p.Hashtag)
	}
	if p.HasDuration() {
		bounds := bson.M{}
		if p.MinDuration != nil {
			bounds["$gte"] = *p.MinDuration
		}
		if p.MaxDuration != nil {
			bounds["$lte"] = *p.MaxDuration
		}
		filter["media.0.durationSeconds"] = bounds
	}
	if p.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"content": re},
			bson.M{"title": re},
			bson.M{"hashtags": re},
		}
	}
	if len(p.ArtistIDs) > 0 {
		filter["artistId"] = bson.M{"$in": p.ArtistIDs}
	}
	if p.NotViewedBy != "" {
		filter["userEngagement.viewedBy"] = bson.M{"$ne": p.NotViewedBy}
	}
	return filter
}

// hashtag допускает ведущие '#' у сохраненного значения
func hashtag(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^#*" + regexp.QuoteMeta(strings.TrimLeft(v, "#")) + "$", Options: "i"}
}

// exact - совпадение элемента массива без учета регистра
func exact(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}
