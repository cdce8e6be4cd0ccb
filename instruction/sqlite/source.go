// Package sqlite stores layered circuits in SQLite and serves them as an
// instruction.Source.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/instruction"
)

//go:embed schema.sql
var schemaSQL string

// ErrInvalidRow is returned for a stored operation that does not decode.
var ErrInvalidRow = errors.New("invalid operation row")

// Kinds stored in the kind column.
const (
	KindLocal = "local"
	KindCNOT  = "cnot"
	KindCZ    = "cz"
	KindRZ    = "rz"
)

// Source reads the operations table one layer at a time.
type Source struct {
	db    *sql.DB
	layer int64
	done  bool
}

// Open creates or opens a circuit database at path and applies the schema.
func Open(path string) (*Source, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Source{db: db, layer: -1}, nil
}

// Close closes the database.
func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert appends layer, assigning seq in slice order.
func (s *Source) Insert(ctx context.Context, layer int, ins []instruction.Instruction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO operations (layer, seq, kind, gate, qubit_a, qubit_b, tag) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, in := range ins {
		kind, gate, tag, err := row(in)
		if err != nil {
			return fmt.Errorf("layer %d seq %d: %w", layer, seq, err)
		}
		if _, err := stmt.ExecContext(ctx, layer, seq, kind, gate, in.A, in.B, tag); err != nil {
			return fmt.Errorf("insert layer %d seq %d: %w", layer, seq, err)
		}
	}

	return tx.Commit()
}

func row(in instruction.Instruction) (kind, gate string, tag uint32, err error) {
	switch in.Op {
	case instruction.CNOT:
		return KindCNOT, "", 0, nil
	case instruction.CZ:
		return KindCZ, "", 0, nil
	case instruction.RZ:
		return KindRZ, "", in.B, nil
	}
	if id, ok := in.Op.Clifford(); ok {
		return KindLocal, id.String(), 0, nil
	}
	return "", "", 0, fmt.Errorf("%w: %s", instruction.ErrUnknownOpcode, in.Op)
}

// Layers returns the number of distinct layers stored.
func (s *Source) Layers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT layer) FROM operations`).Scan(&n)
	return n, err
}

// Rewind restarts NextLayer from the first layer.
func (s *Source) Rewind() {
	s.layer = -1
	s.done = false
}

// NextLayer returns the instructions of the next stored layer ordered by seq.
func (s *Source) NextLayer(ctx context.Context) ([]instruction.Instruction, error) {
	if s.done {
		return nil, io.EOF
	}

	var next sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(layer) FROM operations WHERE layer > ?`, s.layer).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("find next layer: %w", err)
	}
	if !next.Valid {
		s.done = true
		return nil, io.EOF
	}
	layer := next.Int64

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, gate, qubit_a, qubit_b, tag FROM operations WHERE layer = ? ORDER BY seq`, layer)
	if err != nil {
		return nil, fmt.Errorf("query layer %d: %w", layer, err)
	}
	defer rows.Close()

	var out []instruction.Instruction
	for rows.Next() {
		var (
			kind, gate string
			a, b, tag  uint32
		)
		if err := rows.Scan(&kind, &gate, &a, &b, &tag); err != nil {
			return nil, fmt.Errorf("scan layer %d: %w", layer, err)
		}
		in, err := decode(kind, gate, a, b, tag)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", layer, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.layer = layer
	return out, nil
}

func decode(kind, gate string, a, b, tag uint32) (instruction.Instruction, error) {
	switch kind {
	case KindLocal:
		id, ok := clifford.Parse(gate)
		if !ok {
			return instruction.Instruction{}, fmt.Errorf("%w: gate %q", ErrInvalidRow, gate)
		}
		return instruction.Local(id, a), nil
	case KindCNOT:
		return instruction.NewCNOT(a, b), nil
	case KindCZ:
		return instruction.NewCZ(a, b), nil
	case KindRZ:
		return instruction.NewRZ(a, tag), nil
	default:
		return instruction.Instruction{}, fmt.Errorf("%w: kind %q", ErrInvalidRow, kind)
	}
}
