package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/query"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage хранит пост целиком в JSONB, а поля для фильтрации и
// сортировки дублирует в отдельных колонках
type PostgresStorage struct {
	pool *pgxpool.Pool
}

const schema = `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		artist_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		visibility TEXT NOT NULL,
		moderation_status TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL,
		version BIGINT NOT NULL,
		doc JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posts_feed ON posts(visibility, moderation_status, published_at DESC);
	CREATE INDEX IF NOT EXISTS idx_posts_artist_id ON posts(artist_id);
`

func New(dsn string) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperr.Unavailable("failed to connect to postgres", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.For("postgres").Info("подключение к PostgreSQL установлено, схема готова")
	return &PostgresStorage{pool: pool}, nil
}

func (s *PostgresStorage) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Version == 0 {
		post.Version = 1
	}
	doc, err := encode(post)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO posts (id, artist_id, platform, visibility, moderation_status, published_at, version, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.ArtistID, strings.ToLower(string(post.Platform)), post.Visibility, post.ModerationStatus,
		post.PublishedAt, post.Version, doc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("post already exists")
		}
		return mapError("insert post", err)
	}
	return nil
}

func (s *PostgresStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var (
		doc     []byte
		version int64
	)
	err := s.pool.QueryRow(ctx, `SELECT doc, version FROM posts WHERE id=$1`, id).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrPostNotFound
	}
	if err != nil {
		return nil, mapError("get post", err)
	}
	return decode(doc, version)
}

func (s *PostgresStorage) GetPosts(ctx context.Context, ids []string) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT doc, version FROM posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, mapError("get posts", err)
	}
	return scanPosts(rows)
}

func (s *PostgresStorage) FindPosts(ctx context.Context, q query.Query) ([]*models.Post, error) {
	where, args := compile(q.Predicate)
	sql := `SELECT doc, version FROM posts WHERE ` + where + ` ORDER BY published_at DESC, id`
	if q.Skip > 0 {
		args = append(args, q.Skip)
		sql += ` OFFSET $` + strconv.Itoa(len(args))
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("find posts", err)
	}
	return scanPosts(rows)
}

func (s *PostgresStorage) CountPosts(ctx context.Context, p query.Predicate) (int64, error) {
	where, args := compile(p)
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total); err != nil {
		return 0, mapError("count posts", err)
	}
	return total, nil
}

func (s *PostgresStorage) UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error {
	doc, err := encode(post)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE posts SET doc=$1, version=$2
		WHERE id=$3 AND version=$4`,
		doc, expectedVersion+1, post.ID, expectedVersion)
	if err != nil {
		return mapError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id=$1)`, post.ID).Scan(&exists); err != nil {
			return mapError("update post", err)
		}
		if !exists {
			return storage.ErrPostNotFound
		}
		return storage.ErrConflict
	}
	post.Version = expectedVersion + 1
	return nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	logger.For("postgres").Info("пул соединений закрыт")
	return nil
}

func scanPosts(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, mapError("scan posts", err)
		}
		post, err := decode(doc, version)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("scan posts", err)
	}
	return posts, nil
}

func encode(post *models.Post) (string, error) {
	p := post.Clone()
	p.Normalize()
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode post: %w", err)
	}
	return string(b), nil
}

func decode(doc []byte, version int64) (*models.Post, error) {
	var p models.Post
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode post: %w", err)
	}
	p.Version = version
	return &p, nil
}

func mapError(op string, err error) error {
	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	// обрыв соединения посреди чтения приходит как сетевая ошибка
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.Unavailable("postgres unavailable", err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
