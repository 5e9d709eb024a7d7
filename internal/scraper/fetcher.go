package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbnhln/kckScraper/internal/entry"
	"github.com/rbnhln/kckScraper/internal/schedule"
	"golang.org/x/sync/singleflight"
)

// Fetcher resolves teacher schedules, going to the network only on a cache
// miss.
type Fetcher struct {
	dir    *Directory
	parser schedule.EntryParser
	ttl    time.Duration
	group  *singleflight.Group
	logger *slog.Logger
}

func NewFetcher(dir *Directory, opts Options) *Fetcher {
	f := &Fetcher{
		dir:    dir,
		parser: opts.Parser,
		ttl:    opts.TeacherTTL,
		logger: orDiscard(opts.Logger),
	}
	if f.parser == nil {
		f.parser = entry.Parser{}
	}
	if opts.Coalesce {
		f.group = &singleflight.Group{}
	}
	return f
}

// Directory returns the teacher directory the fetcher validates ids against.
func (f *Fetcher) Directory() *Directory {
	return f.dir
}

// FetchTeacherList is Directory().FetchTeacherList.
func (f *Fetcher) FetchTeacherList(ctx context.Context) (map[int]string, error) {
	return f.dir.FetchTeacherList(ctx)
}

// FetchTeacherSchedule returns the schedule of teacher id. Ids missing from
// the directory fail with *UnknownTeacherError before the schedule page is
// requested.
func (f *Fetcher) FetchTeacherSchedule(ctx context.Context, id int) (schedule.TeacherSchedule, error) {
	key := TeacherKey(id)

	var cached schedule.TeacherSchedule
	if f.dir.store.Get(key, &cached) {
		f.logger.Debug("cache hit", "key", key)
		return cached, nil
	}
	f.logger.Debug("cache miss", "key", key)

	return coalesce(ctx, f.group, key, func(ctx context.Context) (schedule.TeacherSchedule, error) {
		return f.fetch(ctx, id)
	})
}

func (f *Fetcher) fetch(ctx context.Context, id int) (schedule.TeacherSchedule, error) {
	list, err := f.dir.FetchTeacherList(ctx)
	if err != nil {
		return schedule.TeacherSchedule{}, err
	}

	name, ok := list[id]
	if !ok {
		return schedule.TeacherSchedule{}, &UnknownTeacherError{ID: id}
	}

	pageURL, err := f.dir.TeacherURL(id)
	if err != nil {
		return schedule.TeacherSchedule{}, fmt.Errorf("build schedule url: %w", err)
	}

	doc, err := f.dir.client.Document(ctx, pageURL)
	if err != nil {
		return schedule.TeacherSchedule{}, err
	}

	res := schedule.Parse(ScheduleNodes(doc), f.parser)
	for _, line := range res.Skipped {
		f.logger.Debug("skipped schedule line", "id", id, "line", line)
	}

	ts := schedule.TeacherSchedule{
		ID:       id,
		Name:     name,
		Schedule: res.Schedule,
		Blocks:   res.Blocks,
	}
	key := TeacherKey(id)
	if err := f.dir.store.Set(key, ts, f.ttl); err != nil {
		f.logger.Warn("caching schedule failed", "key", key, "error", err)
	}

	f.logger.Info("schedule fetched", "id", id, "blocks", len(res.Blocks), "skipped", len(res.Skipped))
	return ts, nil
}
