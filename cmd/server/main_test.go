package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runFunc func() error

func (f runFunc) Run() error { return f() }

func TestServeClosesStorage(t *testing.T) {
	tests := []struct {
		name   string
		runErr error
	}{
		{"clean shutdown", nil},
		{"listen failure", errors.New("listen tcp :8080: bind: address already in use")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			require.NoError(t, store.CreatePost(ctx, &models.Post{ID: "p1", PublishedAt: time.Now().UTC()}))

			err := serve(runFunc(func() error { return tt.runErr }), store)
			assert.Equal(t, tt.runErr, err)

			_, err = store.GetPost(ctx, "p1")
			assert.Error(t, err, "хранилище должно быть закрыто")
		})
	}
}
