package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rbnhln/kckScraper/internal/config"
	"github.com/rbnhln/kckScraper/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<select id="teacher"><option value="7">A. Kowalski</option><option value="3">Z. Adamska</option></select>`

const teacherPage = `<div class="img_caption"></div><h2>A. Kowalski</h2>
<h4>Monday</h4><p>10-12: Lab/101<br>8-10: Algorithms, W/2.14 gr. 1</p>
<h4>Tuesday</h4><p>12-14: RoomA</p>
<script></script>`

type fixture struct {
	site     *httptest.Server
	requests atomic.Int32
	config   string
	cache    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.site = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		switch r.URL.Query().Get("id") {
		case "":
			fmt.Fprint(w, listingPage)
		case "7":
			fmt.Fprint(w, teacherPage)
		case "3":
			fmt.Fprint(w, `<div class="img_caption"></div><h2>Z</h2><script></script>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.site.Close)

	dir := t.TempDir()
	f.cache = filepath.Join(dir, "cache", "cache.json")
	f.config = filepath.Join(dir, "config.json")

	cfg := config.Default()
	cfg.Source.ListURL = f.site.URL + "/rozklad.php?page=nau"
	cfg.Cache.File = f.cache
	require.NoError(t, config.Write(f.config, cfg))
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", f.config}, args...)
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Version:")
}

func TestRun_Teachers(t *testing.T) {
	f := newFixture(t)

	code, out, _ := f.run(t, "teachers")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "A. Kowalski")
	assert.Less(t, bytes.Index([]byte(out), []byte("A. Kowalski")), bytes.Index([]byte(out), []byte("Z. Adamska")))

	code, out, _ = f.run(t, "teachers", "--json")
	require.Equal(t, 0, code)
	var list map[int]string
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, map[int]string{7: "A. Kowalski", 3: "Z. Adamska"}, list)
}

func TestRun_ScheduleServedFromPersistedCache(t *testing.T) {
	f := newFixture(t)

	code, out, _ := f.run(t, "schedule", "7", "--json")
	require.Equal(t, 0, code)

	var ts schedule.TeacherSchedule
	require.NoError(t, json.Unmarshal([]byte(out), &ts))
	assert.Equal(t, 7, ts.ID)
	assert.Equal(t, "A. Kowalski", ts.Name)
	assert.Equal(t, []string{"Monday", "Tuesday"}, ts.Blocks)
	require.Len(t, ts.Schedule["Monday"]["10-12"], 1)
	assert.Equal(t, "101", ts.Schedule["Monday"]["10-12"][0].Room)

	_, err := os.Stat(f.cache)
	require.NoError(t, err, "cache must be written when the process ends")

	f.site.Close()
	before := f.requests.Load()

	code, out, _ = f.run(t, "schedule", "7")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "A. Kowalski (7)")
	assert.Contains(t, out, "Algorithms")
	assert.Equal(t, before, f.requests.Load())
}

func TestRun_UnknownTeacher(t *testing.T) {
	f := newFixture(t)

	code, _, stderr := f.run(t, "schedule", "99")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "teacher with id 99 does not exist")
}

func TestRun_InvalidID(t *testing.T) {
	f := newFixture(t)

	code, _, stderr := f.run(t, "schedule", "abc")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid teacher id")
	assert.Zero(t, f.requests.Load())
}

func TestRun_MissingExplicitConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "none.json"), "teachers"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
}

func TestRun_Warm(t *testing.T) {
	f := newFixture(t)

	code, _, _ := f.run(t, "warm")
	require.Equal(t, 0, code)
	assert.EqualValues(t, 3, f.requests.Load())

	code, _, _ = f.run(t, "warm")
	require.Equal(t, 0, code)
	assert.EqualValues(t, 3, f.requests.Load(), "second warm-up is served from the cache file")
}

func TestRun_WarmInterruptedReportsFailure(t *testing.T) {
	f := newFixture(t)

	paths := make(chan string, 4)
	hc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
	}))
	t.Cleanup(hc.Close)

	cfg, err := config.Load(f.config)
	require.NoError(t, err)
	cfg.Notifications.HealthchecksURL = hc.URL + "/check"
	require.NoError(t, config.Write(f.config, *cfg))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"--config", f.config, "warm"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Zero(t, f.requests.Load())

	require.Len(t, paths, 1)
	assert.Equal(t, "/check/fail", <-paths)
}

func TestRoutes(t *testing.T) {
	f := newFixture(t)

	app := &application{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	root := app.rootCmd()
	require.NoError(t, root.ParseFlags([]string{"--config", f.config}))
	require.NoError(t, app.setup(root, nil))
	t.Cleanup(func() { _ = app.close() })

	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)

	tests := []struct {
		path   string
		status int
	}{
		{path: "/teachers", status: http.StatusOK},
		{path: "/teachers/7", status: http.StatusOK},
		{path: "/teachers/99", status: http.StatusNotFound},
		{path: "/teachers/x", status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}

	f.site.Close()
	resp, err := http.Get(srv.URL + "/teachers/3")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"--config", f.config, "serve", "--addr", "127.0.0.1:0"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
}
