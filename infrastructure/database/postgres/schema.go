package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS analysis_reports (
		id VARCHAR(32) PRIMARY KEY,
		source_name VARCHAR(255) NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		input_rows INTEGER NOT NULL,
		valid_rows INTEGER NOT NULL,
		rejected_rows INTEGER NOT NULL,
		total_revenue NUMERIC(18, 2) NOT NULL,
		anomaly_count INTEGER NOT NULL,
		report JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_reports_created_at ON analysis_reports (created_at DESC)`,
}

// EnsureSchema cria as tabelas usadas pela aplicação caso ainda não existam
func EnsureSchema(ctx context.Context, conn Conn) error {
	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, statement := range schemaStatements {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return errors.Wrap(err, "erro ao criar schema")
			}
		}
		return nil
	})
}
