// Package persist round-trips the two persisted-state files spec 6
// describes: the evaluation cache file and the hot-restart file
// {mesh indices, barrier contents, iteration counter, seed}.
//
// It repurposes Baaaaam-optim/pattern/pattern.go's sql.DB-backed trace
// tables (Method.Db/initdb/TblPolls/TblInfo,
// mirrored in swarm.go/pswarm.go) from write-only iteration tracing
// into authoritative, readable persistence: the same CREATE TABLE IF
// NOT EXISTS idiom, but now queried back on restore.
package persist

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/barrier"
	"github.com/rwcarlsen/mads/cache"
)

const (
	tblCache    = "mads_cache"
	tblRestart  = "mads_restart"
	tblBarrier  = "mads_barrier"
)

// Store wraps a sql.DB with the table layout for cache and
// hot-restart round-tripping (spec 6's "Persisted state").
type Store struct {
	db *sql.DB
	n  int
}

// Open opens (creating if necessary) a sqlite3-backed Store at path
// for a problem of dimension n.
func Open(path string, n int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, n: n}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initTables() error {
	xcols := ""
	for i := 0; i < s.n; i++ {
		xcols += fmt.Sprintf(", x%d REAL", i)
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			tag INTEGER PRIMARY KEY, status INTEGER, f REAL, h REAL, output TEXT %s
		)`, tblCache, xcols),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY, niter INTEGER, seed INTEGER, hmax REAL, mesh_indices TEXT
		)`, tblRestart),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY, kind TEXT, f REAL, h REAL %s
		)`, tblBarrier, xcols),
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return err
		}
	}
	return nil
}

// WriteCache writes one row per cache entry holding its latest
// black-box eval: inputs, outputs, status, f and h (spec 6(a): "one
// line per evaluated point with inputs, outputs, and a status flag").
// Earlier evals of an entry and other evaluator kinds are not written,
// an undefined f is stored as 0, and ReadCache restores every row as
// counted.
func (s *Store) WriteCache(c *cache.Cache) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM " + tblCache); err != nil {
		tx.Rollback()
		return err
	}

	var execErr error
	c.Range(nil, func(e *cache.Entry) bool {
		ev := e.Latest(cache.BlackBox)
		if ev == nil {
			return true
		}
		cols := make([]string, 0, s.n)
		placeholders := make([]string, 0, s.n)
		args := []interface{}{e.Tag, int(ev.Status), ev.F.Or(0), ev.H, encodeOutput(ev.Output)}
		for i := 0; i < s.n; i++ {
			cols = append(cols, fmt.Sprintf("x%d", i))
			placeholders = append(placeholders, "?")
			args = append(args, e.Point.At(i).Value())
		}
		q := fmt.Sprintf("INSERT INTO %s (tag, status, f, h, output%s) VALUES (?,?,?,?,?%s)",
			tblCache, joinCols(cols), joinPlaceholders(placeholders))
		if _, err := tx.Exec(q, args...); err != nil {
			execErr = err
			return false
		}
		return true
	})
	if execErr != nil {
		tx.Rollback()
		return execErr
	}
	return tx.Commit()
}

// ReadCache rebuilds a Cache from a previously written store, so a
// restored run never re-evaluates an already-cached point (spec 6(a),
// S6's hot-restart scenario).
func (s *Store) ReadCache() (*cache.Cache, error) {
	cols := ""
	for i := 0; i < s.n; i++ {
		cols += fmt.Sprintf(", x%d", i)
	}
	rows, err := s.db.Query(fmt.Sprintf("SELECT tag, status, f, h, output%s FROM %s ORDER BY tag", cols, tblCache))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := cache.New(0)
	for rows.Next() {
		var tag int64
		var status int
		var f, h float64
		var output string
		scanArgs := []interface{}{&tag, &status, &f, &h, &output}
		xs := make([]float64, s.n)
		for i := range xs {
			scanArgs = append(scanArgs, &xs[i])
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		p := mads.NewPoint(xs)
		c.SmartInsert(p, cache.BlackBox, 1)
		c.RestoreEval(p, cache.BlackBox, decodeOutput(output), mads.Def(f), h, cache.Status(status), true)
	}
	return c, rows.Err()
}

// RestartState is the hot-restart snapshot (spec 4.8, 6(b)): mesh
// indices, barrier contents, iteration counter, and seed.
type RestartState struct {
	Niter       int
	Seed        int64
	Hmax        float64
	MeshIndices []int
	XStar       *barrier.Candidate
	XZero       *barrier.Candidate
}

// WriteRestart persists a RestartState, overwriting any prior snapshot.
func (s *Store) WriteRestart(r RestartState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM " + tblRestart); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %s (id, niter, seed, hmax, mesh_indices) VALUES (0,?,?,?,?)", tblRestart),
		r.Niter, r.Seed, r.Hmax, encodeIndices(r.MeshIndices)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("DELETE FROM " + tblBarrier); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.writeCandidate(tx, "xstar", r.XStar); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.writeCandidate(tx, "xzero", r.XZero); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) writeCandidate(tx *sql.Tx, kind string, c *barrier.Candidate) error {
	if c == nil {
		return nil
	}
	cols := make([]string, 0, s.n)
	placeholders := make([]string, 0, s.n)
	args := []interface{}{kind, c.F.Or(0), c.H}
	for i := 0; i < s.n; i++ {
		cols = append(cols, fmt.Sprintf("x%d", i))
		placeholders = append(placeholders, "?")
		args = append(args, c.Pos.At(i).Value())
	}
	q := fmt.Sprintf("INSERT INTO %s (kind, f, h%s) VALUES (?,?,?%s)", tblBarrier, joinCols(cols), joinPlaceholders(placeholders))
	_, err := tx.Exec(q, args...)
	return err
}

// ReadRestart reloads the most recent snapshot, or ok=false if none
// was ever written.
func (s *Store) ReadRestart() (r RestartState, ok bool, err error) {
	row := s.db.QueryRow(fmt.Sprintf("SELECT niter, seed, hmax, mesh_indices FROM %s WHERE id=0", tblRestart))
	var indices string
	if err := row.Scan(&r.Niter, &r.Seed, &r.Hmax, &indices); err != nil {
		if err == sql.ErrNoRows {
			return r, false, nil
		}
		return r, false, err
	}
	r.MeshIndices = decodeIndices(indices)

	cols := ""
	for i := 0; i < s.n; i++ {
		cols += fmt.Sprintf(", x%d", i)
	}
	rows, err := s.db.Query(fmt.Sprintf("SELECT kind, f, h%s FROM %s", cols, tblBarrier))
	if err != nil {
		return r, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var f, h float64
		xs := make([]float64, s.n)
		scanArgs := []interface{}{&kind, &f, &h}
		for i := range xs {
			scanArgs = append(scanArgs, &xs[i])
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return r, false, err
		}
		cand := &barrier.Candidate{Pos: mads.NewPoint(xs), F: mads.Def(f), H: h}
		if kind == "xstar" {
			r.XStar = cand
		} else {
			r.XZero = cand
		}
	}
	return r, true, rows.Err()
}

func joinCols(cols []string) string {
	out := ""
	for _, c := range cols {
		out += ", " + c
	}
	return out
}

func joinPlaceholders(ps []string) string {
	out := ""
	for _, p := range ps {
		out += ", " + p
	}
	return out
}

func encodeOutput(out []float64) string {
	s := ""
	for i, v := range out {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%g", v)
	}
	return s
}

func encodeIndices(idx []int) string {
	s := ""
	for i, v := range idx {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", v)
	}
	return s
}

func decodeIndices(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	var v int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				fmt.Sscanf(s[start:i], "%d", &v)
				out = append(out, v)
			}
			start = i + 1
		}
	}
	return out
}

func decodeOutput(s string) []float64 {
	if s == "" {
		return nil
	}
	var out []float64
	var v float64
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				fmt.Sscanf(s[start:i], "%g", &v)
				out = append(out, v)
			}
			start = i + 1
		}
	}
	return out
}
