package writer

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBWriter stages bars in an in-memory DuckDB table and exports them as
// a parquet file. Rows already in the output file are merged in first, and
// for every (symbol, time) pair the most recently written row wins.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	logger     *logger.Logger
}

var _ MarketDataWriter = (*DuckDBWriter)(nil)

// NewDuckDBWriter creates a writer for the parquet file at outputPath.
func NewDuckDBWriter(outputPath string, logger *logger.Logger) *DuckDBWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
		logger:     logger,
	}
}

func quote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", "''") + "'"
}

// Initialize opens the staging database, loads any existing output file and
// prepares the insert statement inside a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	if w.db != nil {
		return nil
	}

	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	defer func() {
		if err != nil {
			w.db.Close()
			w.db = nil
		}
	}()

	_, err = w.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS market_data_seq START 1;
		CREATE TABLE IF NOT EXISTS market_data (
			seq BIGINT DEFAULT nextval('market_data_seq'),
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create staging table", err)
	}

	if _, statErr := os.Stat(w.outputPath); statErr == nil {
		_, err = w.db.Exec(fmt.Sprintf(`
			INSERT INTO market_data (time, symbol, open, high, low, close, volume)
			SELECT time, symbol, open, high, low, close, volume
			FROM read_parquet(%s)
			ORDER BY time
		`, quote(w.outputPath)))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to merge existing file %s", w.outputPath)
		}

		w.logger.Debug("Merging into existing file", zap.String("path", w.outputPath))
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = w.tx.Rollback()
		w.tx = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write stages one bar.
func (w *DuckDBWriter) Write(bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(bar.Time.UTC(), bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert bar", err)
	}

	return nil
}

// Finalize commits the staged rows and exports them, deduplicated and
// sorted by symbol and time, to the output file.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	if w.stmt != nil {
		_ = w.stmt.Close()
		w.stmt = nil
	}

	if err := w.tx.Commit(); err != nil {
		_ = w.tx.Rollback()
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (
			SELECT time, symbol, open, high, low, close, volume
			FROM market_data
			QUALIFY row_number() OVER (PARTITION BY symbol, time ORDER BY seq DESC) = 1
			ORDER BY symbol, time
		) TO %s (FORMAT PARQUET)
	`, quote(w.outputPath)))
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export %s", w.outputPath)
	}

	w.logger.Info("Exported market data", zap.String("path", w.outputPath))

	return w.outputPath, nil
}

// Close rolls back anything not finalized and closes the database.
func (w *DuckDBWriter) Close() error {
	var firstErr error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			firstErr = err
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("Failed to roll back unfinished transaction", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		w.db = nil
	}

	if firstErr != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close writer", firstErr)
	}

	return nil
}

func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
