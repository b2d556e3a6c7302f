package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

const (
	modeAppend  = "append"
	modeReplace = "replace"
)

type endpoint struct {
	dsn        string
	table      string
	mode       string
	autoCreate bool
}

func newEndpoint(cfg map[string]any) (plugin.Endpoint, error) {
	table, ok := plugin.ConfigString(cfg, "table")
	if !ok {
		return nil, fmt.Errorf("postgres endpoint: table is required")
	}
	mode := plugin.ConfigStringDefault(cfg, "mode", modeAppend)
	if mode != modeAppend && mode != modeReplace {
		return nil, fmt.Errorf("postgres endpoint: unknown mode %q", mode)
	}
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}
	return &endpoint{
		dsn:        dsn,
		table:      table,
		mode:       mode,
		autoCreate: plugin.ConfigBool(cfg, "auto_create", false),
	}, nil
}

// buildDSN accepts either an explicit dsn or discrete connection fields.
func buildDSN(cfg map[string]any) (string, error) {
	if dsn := plugin.ConfigStringDefault(cfg, "dsn", ""); dsn != "" {
		return dsn, nil
	}
	host := plugin.ConfigStringDefault(cfg, "host", "")
	if host == "" {
		return "", fmt.Errorf("postgres endpoint: either dsn or host is required")
	}
	database, ok := plugin.ConfigString(cfg, "database")
	if !ok {
		return "", fmt.Errorf("postgres endpoint: database is required")
	}
	user, ok := plugin.ConfigString(cfg, "user")
	if !ok {
		return "", fmt.Errorf("postgres endpoint: user is required")
	}
	port, ok := plugin.ConfigInt(cfg, "port")
	if !ok {
		port = 5432
	}
	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", database),
		fmt.Sprintf("user=%s", user),
	}
	if password := plugin.ConfigStringDefault(cfg, "password", ""); password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", password))
	}
	return strings.Join(parts, " "), nil
}

func (e *endpoint) Load(ctx context.Context, inputs map[string]*plugin.Artifact, _ plugin.RunContext) error {
	if len(inputs) == 0 {
		return fmt.Errorf("postgres endpoint received no input artifacts")
	}

	conn, err := pgx.Connect(ctx, e.dsn)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close(ctx)

	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	replaced := false
	total := 0
	for _, name := range names {
		artifact := inputs[name]
		if artifact.RowCount() == 0 {
			continue
		}
		if e.autoCreate {
			if err := e.createTable(ctx, conn, artifact); err != nil {
				return err
			}
		}
		if e.mode == modeReplace && !replaced {
			if _, err := conn.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", pgx.Identifier{e.table}.Sanitize())); err != nil {
				return fmt.Errorf("truncating %s: %w", e.table, err)
			}
			replaced = true
		}
		n, err := e.insert(ctx, conn, artifact)
		if err != nil {
			return err
		}
		total += n
	}

	ctxlog.FromContext(ctx).Debug().
		Str("table", e.table).
		Int("rows", total).
		Msg("Loaded rows into postgres")
	return nil
}

func (e *endpoint) createTable(ctx context.Context, conn *pgx.Conn, artifact *plugin.Artifact) error {
	cols := make([]string, 0, len(artifact.Columns))
	for _, col := range artifact.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", pgx.Identifier{col}.Sanitize(), columnType(artifact, col)))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{e.table}.Sanitize(), strings.Join(cols, ", "))
	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("creating table %s: %w", e.table, err)
	}
	return nil
}

// columnType infers a column type from the first non-nil value.
func columnType(artifact *plugin.Artifact, col string) string {
	for _, row := range artifact.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case int, int32, int64:
			return "BIGINT"
		case float32, float64:
			return "DOUBLE PRECISION"
		case bool:
			return "BOOLEAN"
		case time.Time:
			return "TIMESTAMPTZ"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func (e *endpoint) insert(ctx context.Context, conn *pgx.Conn, artifact *plugin.Artifact) (int, error) {
	cols := make([]string, len(artifact.Columns))
	placeholders := make([]string, len(artifact.Columns))
	for i, col := range artifact.Columns {
		cols[i] = pgx.Identifier{col}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{e.table}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	batch := &pgx.Batch{}
	for _, row := range artifact.Rows {
		args := make([]any, len(artifact.Columns))
		for i, col := range artifact.Columns {
			args[i] = row[col]
		}
		batch.Queue(stmt, args...)
	}

	results := conn.SendBatch(ctx, batch)
	defer results.Close()
	for range artifact.Rows {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("inserting into %s: %w", e.table, err)
		}
	}
	return artifact.RowCount(), nil
}

func (e *endpoint) TestConnection(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, e.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return conn.Ping(ctx)
}
