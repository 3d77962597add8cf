package store

import (
	"context"
	"net/http"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/logger"
)

// AuthSource supplies the Authorization header for the current session.
// An empty header means the request goes out unauthenticated.
type AuthSource interface {
	AuthHeader() http.Header
}

// resource is the shared plumbing behind ProjectStore and TaskStore
type resource[E Entity] struct {
	name   string
	client *api.Client
	auth   AuthSource
	coll   Collection[E]
}

func (r *resource[E]) headers() http.Header {
	if r.auth == nil {
		return nil
	}
	return r.auth.AuthHeader()
}

func (r *resource[E]) fetch(ctx context.Context, path string) error {
	seq := r.coll.beginFetch()
	log := logger.WithFields(logger.F("resource", r.name), logger.F("seq", seq))
	log.Debug("Fetching", logger.F("path", path))

	var items []E
	err := r.client.Get(ctx, path, &items, r.headers())

	msg := ""
	if err != nil {
		msg = api.DisplayMessage(err)
	}
	if !r.coll.finishFetch(seq, items, msg) {
		log.Debug("Discarding stale fetch result")
		return err
	}
	if err != nil {
		log.Warn("Fetch failed", logger.F("error", err))
		return err
	}
	log.Debug("Fetched", logger.F("count", len(items)))
	return nil
}

func (r *resource[E]) create(ctx context.Context, path string, body interface{}) (*E, error) {
	var item E
	if err := r.client.Post(ctx, path, body, &item, r.headers()); err != nil {
		return nil, err
	}
	r.coll.add(item)
	logger.Debug("Created", logger.F("resource", r.name), logger.F("id", item.EntityID()))
	return &item, nil
}

func (r *resource[E]) update(ctx context.Context, path string, body interface{}) (*E, error) {
	var item E
	if err := r.client.Put(ctx, path, body, &item, r.headers()); err != nil {
		return nil, err
	}
	if !r.coll.replace(item) {
		logger.Debug("Updated item not held locally", logger.F("resource", r.name), logger.F("id", item.EntityID()))
	}
	return &item, nil
}

func (r *resource[E]) delete(ctx context.Context, path string, id int64) error {
	if err := r.client.Delete(ctx, path, r.headers()); err != nil {
		return err
	}
	if r.coll.remove(id) == 0 {
		logger.Debug("Deleted item not held locally", logger.F("resource", r.name), logger.F("id", id))
	}
	return nil
}
