package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// DropHistory persists every delivered drop batch. It is a consumer of the
// drop stream, not part of the bridge: a failed write never affects delivery
// to other subscribers.
type DropHistory struct {
	db *sql.DB
}

// OpenDropHistory opens (or creates) the history database and sweeps rows
// older than the retention window.
func OpenDropHistory(path string, retentionDays int) (*DropHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS drops (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL,
			dropped_at DATETIME NOT NULL,
			position INTEGER NOT NULL,
			uri TEXT NOT NULL,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			size INTEGER DEFAULT 0,
			checksum TEXT DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_drops_batch ON drops(batch_id);
		CREATE INDEX IF NOT EXISTS idx_drops_time ON drops(dropped_at DESC);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	if retentionDays > 0 {
		cutoff := fmt.Sprintf("-%d days", retentionDays)
		if _, err := db.Exec("DELETE FROM drops WHERE dropped_at < DATETIME('now', ?)", cutoff); err != nil {
			Log.Warn("history retention sweep failed", "error", err)
		}
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		Log.Warn("history WAL mode failed", "error", err)
	}

	return &DropHistory{db: db}, nil
}

// RecordBatch stores one batch and returns its generated id. Stat or checksum
// failures on individual files degrade that row (zero size, empty checksum)
// without failing the batch. Empty batches are not recorded.
func (h *DropHistory) RecordBatch(batch DropBatch) (string, error) {
	if h == nil || h.db == nil {
		return "", fmt.Errorf("history store not available")
	}
	if len(batch) == 0 {
		return "", nil
	}

	batchID := generateBatchID()
	now := time.Now().UTC()

	tx, err := h.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin history tx: %w", err)
	}
	for i, ref := range batch {
		var size int64
		if fi, err := os.Stat(ref.Path); err == nil {
			size = fi.Size()
		}
		sum := checksumFile(ref.Path)
		_, err := tx.Exec(
			`INSERT INTO drops (batch_id, dropped_at, position, uri, path, name, size, checksum)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, now, i, ref.URI, ref.Path, ref.Name, size, sum,
		)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert drop row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history tx: %w", err)
	}
	return batchID, nil
}

// RecentBatches returns up to limit batches, newest first, files in drop order.
func (h *DropHistory) RecentBatches(limit int) ([]BatchRecord, error) {
	if h == nil || h.db == nil {
		return nil, fmt.Errorf("history store not available")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(`
		SELECT batch_id, dropped_at, uri, path, name, size, checksum
		FROM drops
		WHERE batch_id IN (
			SELECT batch_id FROM drops GROUP BY batch_id ORDER BY MAX(dropped_at) DESC, MAX(id) DESC LIMIT ?
		)
		ORDER BY id DESC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var batches []BatchRecord
	index := make(map[string]int)
	for rows.Next() {
		var batchID string
		var droppedAt time.Time
		var rec DropRecord
		if err := rows.Scan(&batchID, &droppedAt, &rec.URI, &rec.Path, &rec.Name, &rec.Size, &rec.Checksum); err != nil {
			continue
		}
		i, ok := index[batchID]
		if !ok {
			batches = append(batches, BatchRecord{BatchID: batchID, DroppedAt: droppedAt})
			i = len(batches) - 1
			index[batchID] = i
		}
		// rows come back id DESC; prepend to restore drop order
		batches[i].Files = append([]DropRecord{rec}, batches[i].Files...)
	}
	return batches, rows.Err()
}

// ClearHistory removes all recorded batches.
func (h *DropHistory) ClearHistory() error {
	if h == nil || h.db == nil {
		return fmt.Errorf("history store not available")
	}
	_, err := h.db.Exec("DELETE FROM drops")
	return err
}

// Close closes the underlying database. Safe on a nil receiver.
func (h *DropHistory) Close() {
	if h != nil && h.db != nil {
		h.db.Close()
	}
}

// checksumFile returns the hex BLAKE2b-256 digest of the file content, or ""
// when the file cannot be read. Missing checksums are acceptable: the history
// row still records the drop.
func checksumFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	hash, err := blake2b.New256(nil)
	if err != nil {
		return ""
	}
	if _, err := io.Copy(hash, f); err != nil {
		return ""
	}
	return hex.EncodeToString(hash.Sum(nil))
}

// generateBatchID returns a random 128-bit hex id, falling back to a
// timestamp when the system RNG is unavailable.
func generateBatchID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
