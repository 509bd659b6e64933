package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/hhvault/hhvault/internal/dbx"
	sqlitemigrations "github.com/hhvault/hhvault/internal/migrations/sqlite"
	"github.com/hhvault/hhvault/internal/repositories/grants"
	"github.com/hhvault/hhvault/internal/repositories/records"
)

// SQLiteRepositoryManager vends repositories for the embedded
// single-profile store (the localStorage analog of the browser original).
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Grants(db dbx.DBTX) grants.Repository {
	return grants.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(sqlitemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// OpenSQLite opens (or creates) the embedded database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path)
}
