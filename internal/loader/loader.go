// Package loader reads documents from a folder on disk and feeds them
// into the engine. It handles the initial bulk load at startup and can
// optionally watch the folder for changes.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driving"
	"github.com/custodia-labs/askdoc/internal/logger"
)

// supportedExtensions lists the file types the loader will ingest.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// FileResult records the outcome of loading a single file.
type FileResult struct {
	Path   string
	Report domain.IngestReport
	Err    error
}

// Report summarises a full load run over the data folder.
type Report struct {
	RunID       string
	FilesFound  int
	FilesLoaded int
	Results     []FileResult
}

// Loader ingests text documents from a data folder.
type Loader struct {
	mu       sync.Mutex
	engine   driving.EngineService
	dataDir  string
	watcher  *fsnotify.Watcher
	closed   bool
	stopOnce sync.Once
}

// New creates a loader over the given data folder.
func New(engine driving.EngineService, dataDir string) (*Loader, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}

	return &Loader{
		engine:  engine,
		dataDir: dataDir,
	}, nil
}

// DataDir returns the folder this loader reads from.
func (l *Loader) DataDir() string {
	return l.dataDir
}

// LoadAll ingests every supported file in the data folder.
// Individual file failures are recorded in the report and do not stop
// the run. The folder is created if it does not exist yet.
func (l *Loader) LoadAll(ctx context.Context, opts domain.IngestOptions) (Report, error) {
	report := Report{RunID: uuid.NewString()}

	if err := os.MkdirAll(l.dataDir, 0700); err != nil {
		return report, fmt.Errorf("create data directory: %w", err)
	}

	entries, err := os.ReadDir(l.dataDir)
	if err != nil {
		return report, fmt.Errorf("read data directory: %w", err)
	}

	logger.Debug("Loader: scanning %s (run %s)", l.dataDir, report.RunID)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if entry.IsDir() || !isSupported(entry.Name()) {
			continue
		}

		report.FilesFound++
		path := filepath.Join(l.dataDir, entry.Name())

		result := l.loadFile(ctx, path, opts)
		report.Results = append(report.Results, result)
		if result.Err == nil {
			report.FilesLoaded++
		} else {
			logger.Warn("Loader: %s: %v", entry.Name(), result.Err)
		}
	}

	logger.Info("Loader: loaded %d/%d files", report.FilesLoaded, report.FilesFound)
	return report, nil
}

// LoadFile ingests a single file from disk.
func (l *Loader) LoadFile(ctx context.Context, path string, opts domain.IngestOptions) (domain.IngestReport, error) {
	result := l.loadFile(ctx, path, opts)
	return result.Report, result.Err
}

// Watch re-ingests files as they are created or modified in the data
// folder. It blocks until the context is cancelled or the watcher
// fails. Modified files are ingested with Replace set so stale chunks
// are dropped.
func (l *Loader) Watch(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("loader is closed")
	}

	info, err := os.Stat(l.dataDir)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("data directory error: %w", err)
	}
	if !info.IsDir() {
		l.mu.Unlock()
		return fmt.Errorf("data path is not a directory: %s", l.dataDir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.dataDir); err != nil {
		watcher.Close()
		l.mu.Unlock()
		return fmt.Errorf("watch %s: %w", l.dataDir, err)
	}
	l.watcher = watcher
	l.mu.Unlock()

	logger.Info("Loader: watching %s", l.dataDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			l.handleFsEvent(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Loader: watch error: %v", err)
		}
	}
}

// Close stops any active watcher. Safe to call multiple times.
func (l *Loader) Close() error {
	var err error
	l.stopOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.closed = true
		if l.watcher != nil {
			err = l.watcher.Close()
			l.watcher = nil
		}
	})
	return err
}

// handleFsEvent ingests the file behind a create or write event.
// Directories, hidden files, and unsupported extensions are ignored.
func (l *Loader) handleFsEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !isSupported(name) {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return
	}

	opts := domain.IngestOptions{Replace: event.Op.Has(fsnotify.Write)}
	result := l.loadFile(ctx, event.Name, opts)
	if result.Err != nil {
		logger.Warn("Loader: %s: %v", name, result.Err)
		return
	}
	logger.Debug("Loader: re-ingested %s (%d chunks)", name, result.Report.ChunkCount)
}

func (l *Loader) loadFile(ctx context.Context, path string, opts domain.IngestOptions) FileResult {
	result := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("read file: %w", err)
		return result
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		result.Err = fmt.Errorf("file is empty")
		return result
	}

	doc := domain.Document{
		ID:   docID(path),
		Text: text,
	}

	result.Report, result.Err = l.engine.Ingest(ctx, doc, opts)
	return result
}

// docID derives the document identifier from the file name, without
// the extension. "notes/cv.txt" becomes "cv".
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isSupported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}
