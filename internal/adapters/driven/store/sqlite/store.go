// Package sqlite provides a VectorStore backed by SQLite. Vectors are
// stored as little-endian float32 blobs and similarity is computed in
// Go with a brute-force cosine scan, which is adequate for the
// per-tenant table sizes this store targets.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// tableNamePattern is the allowed identifier alphabet. Table names are
// interpolated into SQL, so anything outside this pattern is rejected.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if necessary) the store at the given data
// directory. If dataDir is empty, defaults to ~/.quarry/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quarry", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// WAL mode for concurrent readers during ingestion.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CreateTable creates the chunk table and its tenant index if they do
// not already exist.
func (s *Store) CreateTable(ctx context.Context, table string) error {
	if err := validateTableName(table); err != nil {
		return err
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			vector BLOB NOT NULL,
			tenant_id TEXT NOT NULL,
			metadata TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS %s_tenant_idx ON %s (tenant_id);
	`, table, table, table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: create table %s: %v", domain.ErrStore, table, err)
	}
	return nil
}

// Upsert stores rows into table.
func (s *Store) Upsert(ctx context.Context, table string, rows []driven.Row) error {
	if err := validateTableName(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, text, vector, tenant_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, table))
	if err != nil {
		return s.wrapTableErr(table, err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		metadata, err := json.Marshal(row.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshal metadata: %v", domain.ErrStore, err)
		}
		if _, err := stmt.ExecContext(ctx,
			row.ID, row.Text, serializeVector(row.Vector),
			row.TenantID, string(metadata), now,
		); err != nil {
			return s.wrapTableErr(table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStore, err)
	}
	return nil
}

// Query scans the tenant's rows and returns the topK by cosine
// similarity, best first.
func (s *Store) Query(ctx context.Context, table string, vector []float32, tenantID string, topK int) ([]driven.Hit, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrInvalidConfig)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT text, vector, metadata FROM %s WHERE tenant_id = ?", table,
	), tenantID)
	if err != nil {
		return nil, s.wrapTableErr(table, err)
	}
	defer rows.Close()

	var hits []driven.Hit
	for rows.Next() {
		var text, metadataJSON string
		var blob []byte
		if err := rows.Scan(&text, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrStore, err)
		}

		var metadata map[string]any
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
				metadata = nil
			}
		}

		hits = append(hits, driven.Hit{
			Text:       text,
			Similarity: cosineSimilarity(vector, deserializeVector(blob)),
			Metadata:   metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// wrapTableErr maps "no such table" onto the domain error.
func (s *Store) wrapTableErr(table string, err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: table %s", domain.ErrNotFound, table)
	}
	return fmt.Errorf("%w: %v", domain.ErrStore, err)
}

func validateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("%w: invalid table name %q", domain.ErrInvalidConfig, table)
	}
	return nil
}

// serializeVector encodes float32s as a little-endian blob.
func serializeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeVector decodes a little-endian float32 blob.
func deserializeVector(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity returns the cosine of the angle between a and b,
// clamped to [0,1] to match the similarity contract.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
