package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/rbnhln/kckScraper/internal/cache"
	"github.com/rbnhln/kckScraper/internal/schedule"
	"golang.org/x/sync/singleflight"
)

// Cache keys. Per-teacher keys carry the id after the prefix so they never
// collide with the directory entry.
const (
	KeyTeachers      = "teachers"
	teacherKeyPrefix = "teachers__"
)

func TeacherKey(id int) string {
	return teacherKeyPrefix + strconv.Itoa(id)
}

// Options configures a Directory and the Fetcher built on it.
type Options struct {
	ListURL    string
	ListTTL    time.Duration
	TeacherTTL time.Duration
	// Coalesce shares one in-flight fetch between concurrent misses on the
	// same cache key. Off by default: every miss fetches on its own.
	// The shared fetch is detached from the callers' cancellation and only
	// bounded by the client timeout; a cancelled caller stops waiting while
	// the others still get the result.
	Coalesce bool
	Parser   schedule.EntryParser
	Logger   *slog.Logger
}

// Directory is the cached id -> name list of all teachers.
type Directory struct {
	client  *Client
	store   *cache.Store
	listURL string
	ttl     time.Duration
	group   *singleflight.Group
	logger  *slog.Logger
}

func NewDirectory(client *Client, store *cache.Store, opts Options) *Directory {
	d := &Directory{
		client:  client,
		store:   store,
		listURL: opts.ListURL,
		ttl:     opts.ListTTL,
		logger:  orDiscard(opts.Logger),
	}
	if opts.Coalesce {
		d.group = &singleflight.Group{}
	}
	return d
}

// FetchTeacherList returns the cached teacher list or fetches the listing
// page once to rebuild it.
func (d *Directory) FetchTeacherList(ctx context.Context) (map[int]string, error) {
	var cached map[int]string
	if d.store.Get(KeyTeachers, &cached) {
		d.logger.Debug("cache hit", "key", KeyTeachers)
		return cached, nil
	}
	d.logger.Debug("cache miss", "key", KeyTeachers)

	return coalesce(ctx, d.group, KeyTeachers, func(ctx context.Context) (map[int]string, error) {
		doc, err := d.client.Document(ctx, d.listURL)
		if err != nil {
			return nil, err
		}

		list := TeacherOptions(doc)
		if err := d.store.Set(KeyTeachers, list, d.ttl); err != nil {
			d.logger.Warn("caching teacher list failed", "error", err)
		}
		d.logger.Info("teacher list fetched", "teachers", len(list))
		return list, nil
	})
}

// TeacherURL is the schedule page of one teacher: the listing URL with an
// id query parameter.
func (d *Directory) TeacherURL(id int) (string, error) {
	u, err := url.Parse(d.listURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("id", strconv.Itoa(id))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// coalesce runs fn through g, or directly when g is nil. A shared run gets
// a context that is not cancelled with ctx.
func coalesce[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}

	shared := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fn(shared)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
