package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/query"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStorage struct {
	client *mongo.Client
	posts  *mongo.Collection
}

func New(uri, database string) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperr.Unavailable("failed to ping mongo", err)
	}

	posts := client.Database(database).Collection("posts")
	_, err = posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "moderationStatus", Value: 1}, {Key: "publishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "artistId", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.For("mongo").WithField("database", database).Info("подключение к MongoDB установлено")
	return &MongoStorage{client: client, posts: posts}, nil
}

func (s *MongoStorage) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Version == 0 {
		post.Version = 1
	}
	_, err := s.posts.InsertOne(ctx, document(post))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("post already exists")
	}
	if err != nil {
		return mapError("insert post", err)
	}
	return nil
}

func (s *MongoStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrPostNotFound
	}
	if err != nil {
		return nil, mapError("get post", err)
	}
	return &post, nil
}

func (s *MongoStorage) GetPosts(ctx context.Context, ids []string) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.posts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, mapError("get posts", err)
	}
	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, mapError("decode posts", err)
	}
	return posts, nil
}

func (s *MongoStorage) FindPosts(ctx context.Context, q query.Query) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "_id", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.posts.Find(ctx, compile(q.Predicate), opts)
	if err != nil {
		return nil, mapError("find posts", err)
	}
	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, mapError("decode posts", err)
	}
	return posts, nil
}

func (s *MongoStorage) CountPosts(ctx context.Context, p query.Predicate) (int64, error) {
	total, err := s.posts.CountDocuments(ctx, compile(p))
	if err != nil {
		return 0, mapError("count posts", err)
	}
	return total, nil
}

func (s *MongoStorage) UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error {
	doc := document(post)
	doc.Version = expectedVersion + 1

	res, err := s.posts.ReplaceOne(ctx, bson.M{"_id": post.ID, "version": expectedVersion}, doc)
	if err != nil {
		return mapError("update post", err)
	}
	if res.MatchedCount == 0 {
		n, err := s.posts.CountDocuments(ctx, bson.M{"_id": post.ID})
		if err != nil {
			return mapError("update post", err)
		}
		if n == 0 {
			return storage.ErrPostNotFound
		}
		return storage.ErrConflict
	}
	post.Version = doc.Version
	return nil
}

func (s *MongoStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.For("mongo").Info("отключение от MongoDB")
	return s.client.Disconnect(ctx)
}

func document(post *models.Post) *models.Post {
	doc := post.Clone()
	doc.Normalize()
	doc.Platform = models.Platform(strings.ToLower(string(doc.Platform)))
	return doc
}

func mapError(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperr.Unavailable("mongo unavailable", err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
