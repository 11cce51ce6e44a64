// Package importer bulk-loads Alpha Progression CSV exports from a local
// directory. A SQLite state database remembers which files were already
// imported so repeated runs only touch new or changed exports.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meltforce/liftsignal/internal/ingest/alpha"
	"github.com/meltforce/liftsignal/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsParsed int
	SetsInserted   int64
	SetsSkipped    int64
}

// Importer reads CSV export files from a directory and inserts set logs.
type Importer struct {
	db       *storage.DB
	provider *alpha.Provider
	state    *StateDB
	log      *slog.Logger
	userID   int
	dryRun   bool
	stats    Stats
}

// New creates a new Importer. state may be nil, in which case every file is
// processed on every run.
func New(db *storage.DB, state *StateDB, log *slog.Logger, userID int, dryRun bool) *Importer {
	return &Importer{
		db:       db,
		provider: alpha.NewProvider(db, log),
		state:    state,
		log:      log,
		userID:   userID,
		dryRun:   dryRun,
	}
}

// Import processes all CSV exports under dir, oldest filename first.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := FindCSVFiles(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, dir, path); err != nil {
			imp.stats.FilesErrored++
			imp.log.Error("import failed", "file", path, "error", err)
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, dir, path string) error {
	relPath, err := filepath.Rel(dir, path)
	if err != nil {
		relPath = path
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var hash string
	if imp.state != nil {
		hash, err = HashFile(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}
		done, err := imp.state.IsImported(relPath, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state for %s: %w", relPath, err)
		}
		if done {
			imp.stats.FilesSkipped++
			imp.log.Debug("already imported", "file", relPath)
			return nil
		}
	}

	if imp.dryRun {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		sessions, err := alpha.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", relPath, err)
		}
		imp.stats.FilesProcessed++
		imp.stats.SessionsParsed += len(sessions)
		imp.log.Info("dry run: parsed", "file", relPath, "sessions", len(sessions))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := imp.provider.Ingest(ctx, f, imp.userID)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", relPath, err)
	}

	imp.stats.FilesProcessed++
	imp.stats.SessionsParsed += result.SessionsReceived
	imp.stats.SetsInserted += result.SetsInserted
	imp.stats.SetsSkipped += result.SetsSkipped

	if imp.state != nil {
		if err := imp.state.MarkImported(relPath, info.Size(), hash); err != nil {
			return fmt.Errorf("marking %s imported: %w", relPath, err)
		}
	}

	imp.log.Info("imported",
		"file", relPath,
		"sessions", result.SessionsReceived,
		"sets", result.SetsInserted)
	return nil
}

// FindCSVFiles returns all .csv files under dir (recursively), sorted by
// path so exports import in a stable order.
func FindCSVFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
