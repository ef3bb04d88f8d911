package main

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sambeau/esql/config"
	"github.com/sambeau/esql/pkg/esql/esql"
)

// Watcher monitors query files and re-checks them when they change
type Watcher struct {
	watcher  *fsnotify.Watcher
	checker  *checker
	patterns config.StringOrSlice
	debounce time.Duration
	files    map[string]bool // Files named on the command line
	dirs     []string        // Directories named on the command line
	stdout   io.Writer
	stderr   io.Writer

	// Pending re-checks, one timer per path, to debounce rapid changes
	mu      sync.Mutex
	pending map[string]*time.Timer
	checkMu sync.Mutex // Held while a re-check prints

	onCheck func(path string, ok bool) // Called after each re-check
}

// NewWatcher creates a watcher for the given files and directories
func NewWatcher(c *checker, cfg *config.Config, targets []string, stdout, stderr io.Writer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		checker:  c,
		patterns: cfg.Watch.Patterns,
		debounce: cfg.Watch.Debounce,
		files:    make(map[string]bool),
		stdout:   stdout,
		stderr:   stderr,
		pending:  make(map[string]*time.Timer),
	}

	for _, t := range targets {
		abs, err := filepath.Abs(t)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			w.dirs = append(w.dirs, abs)
		} else {
			w.files[abs] = true
		}
	}
	return w, nil
}

// Start begins watching for file changes
func (w *Watcher) Start(ctx context.Context) error {
	// Files are watched through their directory so editors that replace
	// the file on save are still seen
	parents := make(map[string]bool)
	for file := range w.files {
		parents[filepath.Dir(file)] = true
	}
	for dir := range parents {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	for _, dir := range w.dirs {
		if err := w.watchDirRecursive(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.logInfo("watching: %s (%s)", dir, strings.Join(w.patterns, ", "))
	}
	for file := range w.files {
		w.logInfo("watching: %s", file)
	}

	go w.eventLoop(ctx)
	return nil
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if event.Has(fsnotify.Create) && w.underWatchedDir(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchDirRecursive(event.Name); err != nil {
						w.logError("failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			if w.wants(event.Name) {
				w.schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// wants reports whether a changed path should be re-checked
func (w *Watcher) wants(path string) bool {
	if w.files[path] {
		return true
	}
	return w.underWatchedDir(path) && matchesAny(w.patterns, filepath.Base(path))
}

// underWatchedDir checks if a path is under one of the watched directories
func (w *Watcher) underWatchedDir(path string) bool {
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// schedule re-checks path once no further change arrives within the
// debounce period
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.recheck(path)
	})
}

func (w *Watcher) recheck(path string) {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	w.logInfo("changed: %s", path)
	ok, ioFailed := w.checker.checkFiles([]string{path})
	ok = ok && !ioFailed
	if ok {
		w.logInfo("ok: %s", path)
	}
	if w.onCheck != nil {
		w.onCheck(path, ok)
	}
}

// Close stops the watcher and any pending re-checks
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH] ERROR: "+format+"\n", args...)
}

// runWatch checks targets once, then re-checks them on change until ctx
// is cancelled. With metrics enabled it also serves /metrics.
func runWatch(ctx context.Context, cfg *config.Config, c *checker, targets []string) error {
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		c.opts = append(c.opts, esql.WithMetrics(esql.NewMetrics(reg, cfg.Metrics.Namespace)))

		srv, err := serveMetrics(cfg.Metrics.Listen, newMetricsHandler(reg, cfg.Metrics.Compression))
		if err != nil {
			return &exitError{code: exitIO, err: err}
		}
		defer srv.Shutdown(context.Background())
		fmt.Fprintf(c.stdout, "[WATCH] metrics: http://%s/metrics\n", srv.Addr)
	}

	files, err := expandTargets(targets, cfg.Watch.Patterns)
	if err != nil {
		return &exitError{code: exitIO, err: err}
	}
	c.checkFiles(files)

	w, err := NewWatcher(c, cfg, targets, c.stdout, c.stderr)
	if err != nil {
		return &exitError{code: exitIO, err: err}
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return &exitError{code: exitIO, err: err}
	}

	<-ctx.Done()
	return nil
}

// metricsMinSize is the smallest scrape body worth compressing.
const metricsMinSize = 1024

// newMetricsHandler exposes reg, gzip-compressed at the given level unless
// level is "none".
func newMetricsHandler(reg *prometheus.Registry, level string) http.Handler {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry:           reg,
		DisableCompression: true,
	})
	if level == "none" {
		return h
	}

	gz := gzip.DefaultCompression
	switch level {
	case "fastest":
		gz = gzip.BestSpeed
	case "best":
		gz = gzip.BestCompression
	}

	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(metricsMinSize),
		gzhttp.CompressionLevel(gz),
	)
	if err != nil {
		return h
	}
	return wrapper(h)
}

// serveMetrics starts an HTTP server exposing h on /metrics.
func serveMetrics(addr string, h http.Handler) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	srv.Addr = ln.Addr().String()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[WATCH] ERROR: metrics server: %v\n", err)
		}
	}()
	return srv, nil
}
