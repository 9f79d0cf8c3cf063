package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	_ "modernc.org/sqlite"

	"onsm/numt_classifier/common"
)

// ErrNotFound is returned when a pair_id is not in the store.
var ErrNotFound = errors.New("not found")

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS loci (
	pair_id     TEXT PRIMARY KEY,
	seq         INTEGER NOT NULL,
	nuc_contig  TEXT NOT NULL,
	nuc_start   INTEGER NOT NULL,
	nuc_end     INTEGER NOT NULL,
	mito_contig TEXT NOT NULL,
	mito_start  INTEGER NOT NULL,
	mito_end    INTEGER NOT NULL,
	aln_len     INTEGER NOT NULL,
	aln_ident   REAL NOT NULL,
	singleton   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS features (
	pair_id TEXT PRIMARY KEY REFERENCES loci(pair_id),
	rnuc    REAL,
	rmito   REAL,
	s_nuc   REAL NOT NULL,
	s_mito  REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS scores (
	pair_id      TEXT PRIMARY KEY REFERENCES loci(pair_id),
	score_numt   REAL NOT NULL,
	score_nimt   REAL NOT NULL,
	aln_score    REAL NOT NULL,
	length_score REAL NOT NULL,
	depth_numt   REAL NOT NULL,
	depth_nimt   REAL NOT NULL,
	span_numt    REAL NOT NULL,
	span_nimt    REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS calls (
	pair_id      TEXT PRIMARY KEY REFERENCES loci(pair_id),
	call         TEXT NOT NULL,
	confidence   REAL NOT NULL,
	reason_codes TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS summary (
	n_pairs                   INTEGER NOT NULL,
	n_numt                    INTEGER NOT NULL,
	n_nimt                    INTEGER NOT NULL,
	nuclear_bp_total          INTEGER NOT NULL,
	nuclear_bp_numt           INTEGER NOT NULL,
	nuclear_pct_numt          REAL NOT NULL,
	mito_bp_total             INTEGER NOT NULL,
	mito_bp_nimt              INTEGER NOT NULL,
	mito_pct_nimt             REAL NOT NULL,
	mito_bp_numt_homologs     INTEGER NOT NULL,
	mito_pct_numt_homologs    REAL NOT NULL,
	nuclear_bp_nimt_homologs  INTEGER NOT NULL,
	nuclear_pct_nimt_homologs REAL NOT NULL
);
`

// Store is the per-run SQLite database (run.db). One file holds one run.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case v != schemaVersion:
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// toInt64 converts base-pair counts for SQLite, which stores signed integers.
func toInt64(vs ...uint64) ([]int64, error) {
	out := make([]int64, len(vs))
	for i, v := range vs {
		n, err := safecast.Conv[int64](v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func nullRatio(r common.Ratio) sql.NullFloat64 {
	return sql.NullFloat64{Float64: r.Value, Valid: r.Defined}
}

func ratioOf(nf sql.NullFloat64) common.Ratio {
	return common.Ratio{Value: nf.Float64, Defined: nf.Valid}
}

// SaveRun replaces the stored run with results and the summary, in one transaction.
func (s *Store) SaveRun(ctx context.Context, results []common.LocusResult, m common.SummaryMetrics) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"calls", "scores", "features", "loci", "summary"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, r := range results {
		l, f, sc, c := r.Locus, r.Features, r.Scores, r.Class
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO loci(pair_id, seq, nuc_contig, nuc_start, nuc_end, mito_contig, mito_start, mito_end, aln_len, aln_ident, singleton)
			 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			l.PairID, i, l.NucContig, l.NucStart, l.NucEnd, l.MitoContig, l.MitoStart, l.MitoEnd, l.AlnLen, l.AlnIdent, l.Singleton,
		); err != nil {
			return fmt.Errorf("insert locus %s: %w", l.PairID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO features(pair_id, rnuc, rmito, s_nuc, s_mito) VALUES(?,?,?,?,?)`,
			l.PairID, nullRatio(f.RNuc), nullRatio(f.RMito), f.SNuc, f.SMito,
		); err != nil {
			return fmt.Errorf("insert features %s: %w", l.PairID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scores(pair_id, score_numt, score_nimt, aln_score, length_score, depth_numt, depth_nimt, span_numt, span_nimt)
			 VALUES(?,?,?,?,?,?,?,?,?)`,
			l.PairID, sc.NUMT, sc.NIMT, sc.AlnScore, sc.LengthScore, sc.DepthNUMT, sc.DepthNIMT, sc.SpanNUMT, sc.SpanNIMT,
		); err != nil {
			return fmt.Errorf("insert scores %s: %w", l.PairID, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO calls(pair_id, call, confidence, reason_codes) VALUES(?,?,?,?)`,
			l.PairID, c.Call.String(), c.Confidence, c.Reasons.String(),
		); err != nil {
			return fmt.Errorf("insert call %s: %w", l.PairID, err)
		}
	}

	bp, err := toInt64(m.NuclearBPTotal, m.NuclearBPNUMT, m.MitoBPTotal, m.MitoBPNIMT, m.MitoBPNUMTHomologs, m.NuclearBPNIMTHomologs)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO summary VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.NPairs, m.NNUMT, m.NNIMT,
		bp[0], bp[1], m.NuclearPctNUMT,
		bp[2], bp[3], m.MitoPctNIMT,
		bp[4], m.MitoPctNUMTHomologs,
		bp[5], m.NuclearPctNIMTHomologs,
	); err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const locusQuery = `
SELECT l.pair_id, l.nuc_contig, l.nuc_start, l.nuc_end, l.mito_contig, l.mito_start, l.mito_end,
       l.aln_len, l.aln_ident, l.singleton,
       f.rnuc, f.rmito, f.s_nuc, f.s_mito,
       s.score_numt, s.score_nimt, s.aln_score, s.length_score, s.depth_numt, s.depth_nimt, s.span_numt, s.span_nimt,
       c.call, c.confidence, c.reason_codes
FROM loci l
JOIN features f ON f.pair_id = l.pair_id
JOIN scores s ON s.pair_id = l.pair_id
JOIN calls c ON c.pair_id = l.pair_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (common.LocusResult, error) {
	var (
		r           common.LocusResult
		rnuc, rmito sql.NullFloat64
		call        string
		reasons     string
	)
	l, f, sc := &r.Locus, &r.Features, &r.Scores
	err := row.Scan(
		&l.PairID, &l.NucContig, &l.NucStart, &l.NucEnd, &l.MitoContig, &l.MitoStart, &l.MitoEnd,
		&l.AlnLen, &l.AlnIdent, &l.Singleton,
		&rnuc, &rmito, &f.SNuc, &f.SMito,
		&sc.NUMT, &sc.NIMT, &sc.AlnScore, &sc.LengthScore, &sc.DepthNUMT, &sc.DepthNIMT, &sc.SpanNUMT, &sc.SpanNIMT,
		&call, &r.Class.Confidence, &reasons,
	)
	if err != nil {
		return common.LocusResult{}, err
	}
	f.RNuc, f.RMito = ratioOf(rnuc), ratioOf(rmito)
	r.Class.PairID = l.PairID
	r.Class.Call = common.ParseCall(call)
	r.Class.Reasons, _ = common.ParseReasonSet(reasons)
	return r, nil
}

// Locus returns everything stored for one pair_id.
func (s *Store) Locus(ctx context.Context, pairID string) (common.LocusResult, error) {
	r, err := scanResult(s.db.QueryRowContext(ctx, locusQuery+" WHERE l.pair_id = ?", pairID))
	if errors.Is(err, sql.ErrNoRows) {
		return common.LocusResult{}, fmt.Errorf("pair %s: %w", pairID, ErrNotFound)
	}
	if err != nil {
		return common.LocusResult{}, fmt.Errorf("query pair %s: %w", pairID, err)
	}
	return r, nil
}

// Results returns all stored loci in pair_id order.
func (s *Store) Results(ctx context.Context) ([]common.LocusResult, error) {
	rows, err := s.db.QueryContext(ctx, locusQuery+" ORDER BY l.seq")
	if err != nil {
		return nil, fmt.Errorf("query loci: %w", err)
	}
	defer rows.Close()

	var out []common.LocusResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locus: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary returns the stored genome-level metrics.
func (s *Store) Summary(ctx context.Context) (common.SummaryMetrics, error) {
	var (
		m                                  common.SummaryMetrics
		nucTotal, nucNUMT, mitoTotal       int64
		mitoNIMT, mitoHomologs, nucHomolog int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT * FROM summary LIMIT 1`).Scan(
		&m.NPairs, &m.NNUMT, &m.NNIMT,
		&nucTotal, &nucNUMT, &m.NuclearPctNUMT,
		&mitoTotal, &mitoNIMT, &m.MitoPctNIMT,
		&mitoHomologs, &m.MitoPctNUMTHomologs,
		&nucHomolog, &m.NuclearPctNIMTHomologs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return common.SummaryMetrics{}, fmt.Errorf("summary: %w", ErrNotFound)
	}
	if err != nil {
		return common.SummaryMetrics{}, fmt.Errorf("query summary: %w", err)
	}
	for _, c := range []struct {
		dst *uint64
		src int64
	}{
		{&m.NuclearBPTotal, nucTotal}, {&m.NuclearBPNUMT, nucNUMT},
		{&m.MitoBPTotal, mitoTotal}, {&m.MitoBPNIMT, mitoNIMT},
		{&m.MitoBPNUMTHomologs, mitoHomologs}, {&m.NuclearBPNIMTHomologs, nucHomolog},
	} {
		if *c.dst, err = safecast.Conv[uint64](c.src); err != nil {
			return common.SummaryMetrics{}, fmt.Errorf("summary: %w", err)
		}
	}
	return m, nil
}
