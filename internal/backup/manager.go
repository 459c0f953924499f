package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zzy/curiosity-engine-go/internal/metrics"
	"github.com/zzy/curiosity-engine-go/internal/storage"
)

// ManagerConfig holds snapshot upload settings.
type ManagerConfig struct {
	Key      string        // object key, e.g. "snapshots/curiosity.db.zst"
	Interval time.Duration // time between uploads
	TempDir  string        // scratch space; os.TempDir() when empty
}

// Manager periodically snapshots the database and uploads the compressed
// result to object storage.
type Manager struct {
	client  *Client
	db      *storage.DB
	config  ManagerConfig
	metrics *metrics.Metrics
}

// NewManager creates a snapshot manager. metrics may be nil.
func NewManager(client *Client, db *storage.DB, cfg ManagerConfig, m *metrics.Metrics) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &Manager{client: client, db: db, config: cfg, metrics: m}
}

// Run uploads snapshots on the configured interval until ctx is cancelled.
// Upload failures are logged and the loop keeps going.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "snapshot backup started",
		"key", m.config.Key,
		"interval", m.config.Interval.String())

	for {
		select {
		case <-ctx.Done():
			// Final upload so the stored snapshot is as fresh as possible.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := m.UploadOnce(shutdownCtx); err != nil {
				slog.Error("final snapshot upload failed", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := m.UploadOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "snapshot upload failed", "error", err)
			}
		}
	}
}

// RestoreIfMissing downloads and decompresses the stored snapshot to dbPath
// when no local database file exists yet. A missing remote snapshot is not
// an error; the service simply starts empty.
func RestoreIfMissing(ctx context.Context, client *Client, key, dbPath string) error {
	if _, err := os.Stat(dbPath); err == nil {
		return nil
	}

	body, err := client.Download(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.InfoContext(ctx, "no stored snapshot, starting fresh", "key", key)
			return nil
		}
		return fmt.Errorf("download snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := DecompressStream(body, dbPath); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	slog.InfoContext(ctx, "database restored from snapshot", "key", key, "path", dbPath)
	return nil
}

// UploadOnce snapshots, compresses, and uploads the database a single time.
func (m *Manager) UploadOnce(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			m.metrics.BackupRunsTotal.WithLabelValues(status).Inc()
			m.metrics.BackupDurationSecs.Observe(time.Since(start).Seconds())
		}
	}()

	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("snapshot_%s.db", uuid.NewString()))
	if err := m.db.CreateSnapshot(ctx, snapshotPath); err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() { _ = os.Remove(snapshotPath) }()

	compressedPath := snapshotPath + ".zst"
	if err := CompressFile(snapshotPath, compressedPath); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	defer func() { _ = os.Remove(compressedPath) }()

	compressed, err := os.Open(compressedPath)
	if err != nil {
		return fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer func() { _ = compressed.Close() }()

	etag, err := m.client.Upload(ctx, m.config.Key, compressed, "application/zstd")
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	if info, statErr := os.Stat(compressedPath); statErr == nil && m.metrics != nil {
		m.metrics.BackupSizeBytes.Set(float64(info.Size()))
	}

	slog.InfoContext(ctx, "snapshot uploaded",
		"key", m.config.Key,
		"etag", etag,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
