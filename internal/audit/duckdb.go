package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBLog keeps the audit trail in an in-memory DuckDB table and exports
// it as parquet at the end of a run.
type DuckDBLog struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

var _ Recorder = (*DuckDBLog)(nil)

func NewDuckDBLog(logger *logger.Logger) (*DuckDBLog, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open audit database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open audit database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to audit database", err)
	}

	auditLog := &DuckDBLog{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := auditLog.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return auditLog, nil
}

func (l *DuckDBLog) initialize() error {
	_, err := l.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS audit_id_seq;
		CREATE TABLE IF NOT EXISTS audit (
			id BIGINT PRIMARY KEY DEFAULT nextval('audit_id_seq'),
			timestamp TIMESTAMP,
			kind TEXT,
			symbol TEXT,
			direction TEXT,
			side TEXT,
			order_type TEXT,
			order_id TEXT,
			quantity DOUBLE,
			reference_price DOUBLE,
			source TEXT,
			reason TEXT,
			fields TEXT
		);
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAuditWriteFailed, "failed to create audit table", err)
	}

	return nil
}

// Record implements Recorder.
func (l *DuckDBLog) Record(entry Entry) error {
	var fieldsJSON string

	if len(entry.Fields) > 0 {
		raw, err := json.Marshal(entry.Fields)
		if err != nil {
			return errors.Wrap(errors.ErrCodeAuditWriteFailed, "failed to marshal audit fields", err)
		}

		fieldsJSON = string(raw)
	}

	_, err := l.sq.
		Insert("audit").
		Columns("timestamp", "kind", "symbol", "direction", "side", "order_type", "order_id", "quantity", "reference_price", "source", "reason", "fields").
		Values(entry.Timestamp, string(entry.Kind), entry.Symbol, entry.Direction, entry.Side, entry.OrderType, entry.OrderID,
			entry.Quantity, entry.ReferencePrice, entry.Source, entry.Reason, fieldsJSON).
		RunWith(l.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeAuditWriteFailed, "failed to insert audit entry", err)
	}

	return nil
}

// Entries returns the trail in insertion order, optionally restricted to kinds.
func (l *DuckDBLog) Entries(kinds ...Kind) ([]Entry, error) {
	query := l.sq.
		Select("timestamp", "kind", "symbol", "direction", "side", "order_type", "order_id", "quantity", "reference_price", "source", "reason", "fields").
		From("audit").
		OrderBy("id ASC")

	if len(kinds) > 0 {
		names := make([]string, len(kinds))
		for i, kind := range kinds {
			names[i] = string(kind)
		}

		query = query.Where(squirrel.Eq{"kind": names})
	}

	rows, err := query.RunWith(l.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query audit entries", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			entry      Entry
			kind       string
			fieldsJSON sql.NullString
		)

		err := rows.Scan(&entry.Timestamp, &kind, &entry.Symbol, &entry.Direction, &entry.Side, &entry.OrderType, &entry.OrderID,
			&entry.Quantity, &entry.ReferencePrice, &entry.Source, &entry.Reason, &fieldsJSON)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan audit entry", err)
		}

		entry.Kind = Kind(kind)

		if fieldsJSON.Valid && fieldsJSON.String != "" {
			if err := json.Unmarshal([]byte(fieldsJSON.String), &entry.Fields); err != nil {
				return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to unmarshal audit fields", err)
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating audit entries", err)
	}

	return entries, nil
}

// Write exports the trail to dir/audit.parquet and returns the file path.
func (l *DuckDBLog) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeAuditWriteFailed, "failed to create results directory", err)
	}

	path := filepath.Join(dir, "audit.parquet")

	_, err := l.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM audit ORDER BY id) TO '%s' (FORMAT PARQUET)`, strings.ReplaceAll(path, "'", "''")))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAuditWriteFailed, "failed to export audit trail", err)
	}

	l.logger.Info("Exported audit trail", zap.String("path", path))

	return path, nil
}

// Cleanup empties the trail.
func (l *DuckDBLog) Cleanup() error {
	if _, err := l.db.Exec(`DROP TABLE IF EXISTS audit; DROP SEQUENCE IF EXISTS audit_id_seq;`); err != nil {
		return errors.Wrap(errors.ErrCodeAuditWriteFailed, "failed to reset audit table", err)
	}

	return l.initialize()
}

func (l *DuckDBLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}

	return l.db.Close()
}
