package offline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/connectivity"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
)

// Categories is the offline-aware category client. Categories are
// shared across scopes: one snapshot per user.
type Categories struct {
	api    remote.CategoryAPI
	cache  cache.Store
	queue  queue.Queue
	oracle connectivity.Oracle
	log    logging.Logger
	maxAge time.Duration
	now    clock
}

func NewCategories(api remote.CategoryAPI, c cache.Store, q queue.Queue,
	oracle connectivity.Oracle, log logging.Logger, maxAge time.Duration) *Categories {
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	return &Categories{
		api:    api,
		cache:  c,
		queue:  q,
		oracle: oracle,
		log:    log.With("component", "offline.categories"),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// GetAll returns the user's categories. With no backend and no cache
// it falls back to the built-in default list and caches it, so the
// app always has something to categorize against, even on a first
// offline launch.
func (c *Categories) GetAll(ctx context.Context) ([]models.Category, error) {
	if c.oracle.IsOnline(ctx) {
		cats, err := c.api.FetchAll(ctx)
		if err == nil {
			c.cache.Write(ctx, cache.KeyCategories, cats)
			return cats, nil
		}
		if !fallback(err) {
			return nil, err
		}
		c.log.Warn(ctx, "fetch failed, serving cache", "error", err)
	}

	var cached []models.Category
	if c.cache.Read(ctx, cache.KeyCategories, &cached, c.maxAge) {
		return cached, nil
	}

	defaults := models.DefaultCategories()
	c.cache.Write(ctx, cache.KeyCategories, defaults)
	return defaults, nil
}

// Add records a new category, queueing it for replay when offline.
func (c *Categories) Add(ctx context.Context, cat models.Category) (*models.Category, error) {
	if c.oracle.IsOnline(ctx) {
		created, err := c.api.Insert(ctx, cat)
		if err == nil {
			c.mutateCached(ctx, func(list []models.Category) []models.Category {
				return append([]models.Category{*created}, list...)
			})
			return created, nil
		}
		if !fallback(err) {
			return nil, err
		}
		c.log.Warn(ctx, "insert failed, recording offline", "error", err)
	}

	return c.addOffline(ctx, cat), nil
}

func (c *Categories) addOffline(ctx context.Context, cat models.Category) *models.Category {
	local := cat
	local.ID = models.NewTempID()
	local.IsOffline = true

	c.mutateCached(ctx, func(list []models.Category) []models.Category {
		return append([]models.Category{local}, list...)
	})

	data, err := json.Marshal(cat)
	if err != nil {
		c.log.Error(ctx, "failed to encode pending add", "error", err)
		return &local
	}
	if _, err := c.queue.Enqueue(ctx, models.PendingOperation{
		Type:   models.OpAddCategory,
		Data:   data,
		TempID: local.ID,
	}); err != nil {
		c.log.Error(ctx, "failed to queue pending add", "error", err)
	}

	return &local
}

// Update applies a partial update, folding edits of an unsynced
// category into its pending ADD.
func (c *Categories) Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error) {
	if c.oracle.IsOnline(ctx) && !models.IsTempID(id) {
		updated, err := c.api.Update(ctx, id, upd)
		if err == nil {
			c.mutateCached(ctx, func(list []models.Category) []models.Category {
				for i := range list {
					if list[i].ID == id {
						list[i] = *updated
					}
				}
				return list
			})
			return updated, nil
		}
		if !fallback(err) {
			return nil, err
		}
		c.log.Warn(ctx, "update failed, recording offline", "id", id, "error", err)
	}

	return c.updateOffline(ctx, id, upd)
}

func (c *Categories) updateOffline(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error) {
	var updated *models.Category
	c.mutateCached(ctx, func(list []models.Category) []models.Category {
		for i := range list {
			if list[i].ID == id {
				list[i].Apply(upd)
				list[i].IsOffline = true
				updated = &list[i]
			}
		}
		return list
	})
	if updated == nil {
		return nil, remote.ErrNotFound
	}

	if models.IsTempID(id) {
		c.foldIntoPendingAdd(ctx, id, *updated)
	} else {
		data, err := json.Marshal(upd)
		if err != nil {
			c.log.Error(ctx, "failed to encode pending update", "error", err)
			return updated, nil
		}
		if _, err := c.queue.Enqueue(ctx, models.PendingOperation{
			Type:     models.OpUpdateCategory,
			Data:     data,
			TargetID: id,
		}); err != nil {
			c.log.Error(ctx, "failed to queue pending update", "error", err)
		}
	}

	return updated, nil
}

func (c *Categories) foldIntoPendingAdd(ctx context.Context, tempID string, latest models.Category) {
	ops, err := c.queue.List(ctx)
	if err != nil {
		c.log.Error(ctx, "failed to read queue", "error", err)
		return
	}

	payload := latest
	payload.ID = ""
	payload.IsOffline = false
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Error(ctx, "failed to encode folded add", "error", err)
		return
	}

	for _, op := range ops {
		if op.Type == models.OpAddCategory && op.TempID == tempID {
			if err := c.queue.UpdateData(ctx, op.ID, data); err != nil {
				c.log.Error(ctx, "failed to fold update into pending add", "error", err)
			}
			return
		}
	}
}

// Delete removes a category; deleting an unsynced one just cancels
// its queued ADD.
func (c *Categories) Delete(ctx context.Context, id string) error {
	if c.oracle.IsOnline(ctx) && !models.IsTempID(id) {
		err := c.api.Delete(ctx, id)
		if err == nil {
			c.removeCached(ctx, id)
			return nil
		}
		if !fallback(err) {
			return err
		}
		c.log.Warn(ctx, "delete failed, recording offline", "id", id, "error", err)
	}

	c.removeCached(ctx, id)

	if models.IsTempID(id) {
		if err := c.queue.RemoveForTempID(ctx, id); err != nil {
			c.log.Error(ctx, "failed to cancel queued operations", "id", id, "error", err)
		}
		return nil
	}

	if _, err := c.queue.Enqueue(ctx, models.PendingOperation{
		Type:     models.OpDeleteCategory,
		TargetID: id,
	}); err != nil {
		c.log.Error(ctx, "failed to queue pending delete", "error", err)
	}
	return nil
}

func (c *Categories) mutateCached(ctx context.Context, fn func([]models.Category) []models.Category) {
	var list []models.Category
	if !c.cache.Read(ctx, cache.KeyCategories, &list, c.maxAge) {
		list = []models.Category{}
	}
	c.cache.Write(ctx, cache.KeyCategories, fn(list))
}

func (c *Categories) removeCached(ctx context.Context, id string) {
	c.mutateCached(ctx, func(list []models.Category) []models.Category {
		out := list[:0]
		for _, cat := range list {
			if cat.ID != id {
				out = append(out, cat)
			}
		}
		return out
	})
}
