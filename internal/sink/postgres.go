package sink

import (
	"context"
	"fmt"
	"strings"

	"acsgen/internal/acs/assemble"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres loads assembled tables into a database, one relation per
// (state, table) pair, columns typed text throughout: values are opaque
// strings end-to-end, the sentinel codes included.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at url and verifies the connection.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// WriteTable implements Sink. The relation is dropped and recreated, so a
// re-run replaces its output rather than appending.
func (s *Postgres) WriteTable(ctx context.Context, state string, tbl *assemble.Table) error {
	rel := relationName(state, tbl.Name)
	header := tbl.Header()

	cols := make([]string, len(header))
	defs := make([]string, len(header))
	for i, name := range header {
		cols[i] = name
		defs[i] = pgx.Identifier{name}.Sanitize() + " text"
	}

	if err := s.recreate(ctx, rel, defs); err != nil {
		return errWrite(rel, err)
	}

	rows := make([][]any, len(tbl.Rows))
	for i, row := range tbl.Rows {
		vals := make([]any, 0, len(header))
		vals = append(vals, row.GeoID)
		for _, v := range row.Values {
			if v == "" {
				vals = append(vals, nil)
			} else {
				vals = append(vals, v)
			}
		}
		rows[i] = vals
	}

	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{rel}, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return errWrite(rel, err)
	}
	return nil
}

// WriteIndex implements Sink. The index lands in acs_tables(name, title).
func (s *Postgres) WriteIndex(ctx context.Context, entries []IndexEntry) error {
	const rel = "acs_tables"
	if err := s.recreate(ctx, rel, []string{`"name" text`, `"title" text`}); err != nil {
		return errWrite(rel, err)
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{e.Name, e.Title}
	}
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{rel}, []string{"name", "title"}, pgx.CopyFromRows(rows))
	if err != nil {
		return errWrite(rel, err)
	}
	return nil
}

func (s *Postgres) recreate(ctx context.Context, rel string, defs []string) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{rel}.Sanitize()); err != nil {
		return err
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", pgx.Identifier{rel}.Sanitize(), strings.Join(defs, ", "))
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// relationName derives a Postgres-friendly relation name from the state
// and table names, e.g. colorado_b01001.
func relationName(state, table string) string {
	clean := func(s string) string {
		var b strings.Builder
		for _, r := range strings.ToLower(s) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		return b.String()
	}
	return clean(state) + "_" + clean(table)
}
