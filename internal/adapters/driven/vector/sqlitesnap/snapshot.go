// Package sqlitesnap persists vector index snapshots as SQLite
// databases. A snapshot records every entry (chunk id, vector,
// metadata) plus versioned metadata so an incompatible snapshot is
// rejected at load time rather than silently misinterpreted.
package sqlitesnap

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/askdocs/ragserver/internal/adapters/driven/vector/sqlitesnap/migrations"
	"github.com/askdocs/ragserver/internal/core/domain"
)

// FormatVersion is the snapshot format version. Bumped on
// incompatible schema changes.
const FormatVersion = 1

// Metadata keys in the snapshot_meta table.
const (
	metaKeyVersion    = "format_version"
	metaKeyDimensions = "dimensions"
	metaKeyMetric     = "metric"
	metaKeyCreatedAt  = "created_at"
)

// Meta describes a snapshot's provenance and shape.
type Meta struct {
	// Version is the snapshot format version.
	Version int

	// Dimensions is the embedding dimensionality of every entry.
	Dimensions int

	// Metric is the similarity metric the index was built for.
	Metric string

	// CreatedAt is when the snapshot was written.
	CreatedAt time.Time
}

// Write persists meta and entries to a SQLite database at path,
// replacing any existing snapshot file.
func Write(ctx context.Context, path string, meta Meta, entries []domain.Entry) error {
	// Replace rather than merge: a snapshot is a full copy of the index.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous snapshot: %w", err)
	}

	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	metaRows := map[string]string{
		metaKeyVersion:    strconv.Itoa(FormatVersion),
		metaKeyDimensions: strconv.Itoa(meta.Dimensions),
		metaKeyMetric:     meta.Metric,
		metaKeyCreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for key, value := range metaRows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshot_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("writing snapshot metadata: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (chunk_id, document_id, source, sequence, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		blob := float32SliceToBytes(e.Embedding)
		if _, err := stmt.ExecContext(ctx,
			e.ChunkID, e.DocumentID, e.Source, e.Sequence, e.Content, blob); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot from path. The metadata is validated against
// the format version; dimensionality and metric checks against the
// live index are the caller's responsibility.
func Read(ctx context.Context, path string) (Meta, []domain.Entry, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Meta{}, nil, fmt.Errorf("snapshot %s: %w", path, domain.ErrNotFound)
		}
		return Meta{}, nil, fmt.Errorf("checking snapshot: %w", err)
	}

	db, err := open(path)
	if err != nil {
		return Meta{}, nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return Meta{}, nil, err
	}
	if meta.Version != FormatVersion {
		return Meta{}, nil, fmt.Errorf("%w: snapshot format version %d, expected %d",
			domain.ErrSnapshotMismatch, meta.Version, FormatVersion)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT chunk_id, document_id, source, sequence, content, embedding
		FROM entries ORDER BY document_id, sequence
	`)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var blob []byte
		if err := rows.Scan(&e.ChunkID, &e.DocumentID, &e.Source, &e.Sequence, &e.Content, &blob); err != nil {
			return Meta{}, nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		if len(e.Embedding) != meta.Dimensions {
			return Meta{}, nil, fmt.Errorf("%w: entry %s has %d dimensions, snapshot declares %d",
				domain.ErrSnapshotMismatch, e.ChunkID, len(e.Embedding), meta.Dimensions)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return Meta{}, nil, fmt.Errorf("iterating entries: %w", err)
	}

	return meta, entries, nil
}

// open opens the snapshot database and runs pending migrations.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// readMeta loads and parses the snapshot_meta table.
func readMeta(ctx context.Context, db *sql.DB) (Meta, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM snapshot_meta`)
	if err != nil {
		return Meta{}, fmt.Errorf("querying snapshot metadata: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Meta{}, fmt.Errorf("scanning snapshot metadata: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return Meta{}, fmt.Errorf("iterating snapshot metadata: %w", err)
	}

	if len(values) == 0 {
		return Meta{}, fmt.Errorf("%w: snapshot has no metadata", domain.ErrSnapshotMismatch)
	}

	var meta Meta
	meta.Version, err = strconv.Atoi(values[metaKeyVersion])
	if err != nil {
		return Meta{}, fmt.Errorf("%w: bad format version %q", domain.ErrSnapshotMismatch, values[metaKeyVersion])
	}
	meta.Dimensions, err = strconv.Atoi(values[metaKeyDimensions])
	if err != nil {
		return Meta{}, fmt.Errorf("%w: bad dimensions %q", domain.ErrSnapshotMismatch, values[metaKeyDimensions])
	}
	meta.Metric = values[metaKeyMetric]
	if t, err := time.Parse(time.RFC3339, values[metaKeyCreatedAt]); err == nil {
		meta.CreatedAt = t
	}
	return meta, nil
}

// migrate runs all pending .up.sql migrations in order.
func migrate(db *sql.DB, fsys embed.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts little-endian bytes back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
