package slog

import (
	"log/slog"

	"github.com/mwieczorek/docsnap/ingest"
	"github.com/mwieczorek/docsnap/snapshot"
)

// ProgressLogger returns an ingest.ProgressFunc that logs progress events.
func ProgressLogger(logger *slog.Logger) ingest.ProgressFunc {
	return func(ev ingest.ProgressEvent) {
		switch ev.Type {
		case ingest.ProgressDiscovered:
			logger.Info("pages discovered", "total", ev.Total)
		case ingest.ProgressFetched:
			logger.Info("fetch progress", "completed", ev.Completed, "total", ev.Total)
		case ingest.ProgressPageFailed:
			logger.Warn("page fetch failed", "url", ev.URL, "error", ev.Err)
		case ingest.ProgressFinished:
			logger.Info("ingestion finished", "total", ev.Total)
		}
	}
}

// AcquisitionLogger returns a snapshot.EventFunc that logs acquisition events.
func AcquisitionLogger(logger *slog.Logger) snapshot.EventFunc {
	return func(ev snapshot.Event) {
		switch ev.Type {
		case snapshot.EventStart:
			logger.Debug("snapshot acquisition started", "path", ev.Path)
		case snapshot.EventSkipExisting:
			logger.Debug("existing snapshot is valid", "path", ev.Path)
		case snapshot.EventDownloadAttempt:
			logger.Info("downloading snapshot", "url", ev.URL)
		case snapshot.EventDownloadFailed:
			logger.Warn("snapshot download failed", "url", ev.URL, "error", ev.Err)
		case snapshot.EventDownloadSuccess:
			logger.Info("snapshot downloaded", "url", ev.URL, "path", ev.Path)
		case snapshot.EventCopyAttempt:
			logger.Info("copying bundled snapshot", "path", ev.Path)
		case snapshot.EventCopySuccess:
			logger.Info("bundled snapshot copied", "path", ev.Path)
		}
	}
}
