// Package persistence provides the append-only world store, backed by an
// in-memory SQLite table. Worlds live for the process lifetime; ids are
// dense, strictly increasing, and never reused.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/worldforge/internal/worldgen"
)

// MemoryDSN is the default data source: a private in-memory database.
const MemoryDSN = ":memory:"

// StoredWorld is a generated world as persisted and served: the reconciled
// record plus its assigned id, reasoning trace, and embedding. A nil
// embedding marshals as JSON null and is skipped by the ranking endpoints.
type StoredWorld struct {
	ID        int64     `json:"id"`
	Reasoning string    `json:"reasoning"`
	Summary   string    `json:"summary"`
	Biome     string    `json:"biome"`
	Culture   string    `json:"culture"`
	Tone      string    `json:"tone"`
	Myth      string    `json:"myth"`
	Embedding []float32 `json:"embedding"`
}

// worldRow is the table-shaped view of a StoredWorld.
type worldRow struct {
	ID        int64   `db:"id"`
	Reasoning string  `db:"reasoning"`
	Summary   string  `db:"summary"`
	Biome     string  `db:"biome"`
	Culture   string  `db:"culture"`
	Tone      string  `db:"tone"`
	Myth      string  `db:"myth"`
	Embedding *string `db:"embedding"`
}

// Store wraps the SQLite connection holding the worlds table.
type Store struct {
	conn *sqlx.DB
}

// Open opens a store at the given DSN and creates the schema. With the
// in-memory DSN every connection gets its own database, so the pool is
// pinned to a single connection.
func Open(dsn string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the underlying connection. For an in-memory store this
// discards all worlds.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reasoning TEXT NOT NULL,
		summary TEXT NOT NULL,
		biome TEXT NOT NULL,
		culture TEXT NOT NULL,
		tone TEXT NOT NULL,
		myth TEXT NOT NULL,
		embedding TEXT
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Append stores a generation result and returns it with its assigned id.
func (s *Store) Append(res worldgen.Result) (StoredWorld, error) {
	var embJSON *string
	if res.Embedding != nil {
		data, err := json.Marshal(res.Embedding)
		if err != nil {
			return StoredWorld{}, fmt.Errorf("encode embedding: %w", err)
		}
		enc := string(data)
		embJSON = &enc
	}

	result, err := s.conn.Exec(
		`INSERT INTO worlds (reasoning, summary, biome, culture, tone, myth, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.Reasoning, res.World.Summary, res.World.Biome, res.World.Culture,
		res.World.Tone, res.World.Myth, embJSON,
	)
	if err != nil {
		return StoredWorld{}, fmt.Errorf("insert world: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return StoredWorld{}, fmt.Errorf("world id: %w", err)
	}

	return StoredWorld{
		ID:        id,
		Reasoning: res.Reasoning,
		Summary:   res.World.Summary,
		Biome:     res.World.Biome,
		Culture:   res.World.Culture,
		Tone:      res.World.Tone,
		Myth:      res.World.Myth,
		Embedding: res.Embedding,
	}, nil
}

// List returns every stored world in id (insertion) order.
func (s *Store) List() ([]StoredWorld, error) {
	var rows []worldRow
	err := s.conn.Select(&rows,
		`SELECT id, reasoning, summary, biome, culture, tone, myth, embedding
		 FROM worlds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}

	worlds := make([]StoredWorld, 0, len(rows))
	for _, r := range rows {
		w := StoredWorld{
			ID:        r.ID,
			Reasoning: r.Reasoning,
			Summary:   r.Summary,
			Biome:     r.Biome,
			Culture:   r.Culture,
			Tone:      r.Tone,
			Myth:      r.Myth,
		}
		if r.Embedding != nil {
			if err := json.Unmarshal([]byte(*r.Embedding), &w.Embedding); err != nil {
				return nil, fmt.Errorf("decode embedding for world %d: %w", r.ID, err)
			}
		}
		worlds = append(worlds, w)
	}
	return worlds, nil
}

// Count returns the number of stored worlds.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.conn.Get(&n, `SELECT COUNT(*) FROM worlds`); err != nil {
		return 0, fmt.Errorf("count worlds: %w", err)
	}
	return n, nil
}
