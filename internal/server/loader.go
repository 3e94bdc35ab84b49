package server

import (
	"context"
	"time"

	"github.com/ButyrinIA/feedrank/internal/models"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/graph-gophers/dataloader/v7"
)

// newPostLoader создается на запрос: повторяющиеся id схлопываются,
// все id уходят в хранилище одним GetPosts
func newPostLoader(store storage.Storage) *dataloader.Loader[string, *models.Post] {
	return dataloader.NewBatchedLoader(
		func(ctx context.Context, ids []string) []*dataloader.Result[*models.Post] {
			results := make([]*dataloader.Result[*models.Post], len(ids))

			posts, err := store.GetPosts(ctx, ids)
			if err != nil {
				for i := range results {
					results[i] = &dataloader.Result[*models.Post]{Error: err}
				}
				return results
			}

			byID := make(map[string]*models.Post, len(posts))
			for _, p := range posts {
				byID[p.ID] = p
			}
			for i, id := range ids {
				if p, ok := byID[id]; ok {
					results[i] = &dataloader.Result[*models.Post]{Data: p}
				} else {
					results[i] = &dataloader.Result[*models.Post]{Error: storage.ErrPostNotFound}
				}
			}
			return results
		},
		dataloader.WithWait[string, *models.Post](time.Millisecond),
	)
}
