// Package repomanager vends storage-backend-specific repository
// implementations and owns schema migrations. Services depend on this
// interface, never on a concrete backend, so the core runs identically on
// the embedded SQLite profile store and on a shared PostgreSQL deployment.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/hhvault/hhvault/internal/dbx"
	"github.com/hhvault/hhvault/internal/repositories/grants"
	"github.com/hhvault/hhvault/internal/repositories/records"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Grants(db dbx.DBTX) grants.Repository
	Records(db dbx.DBTX) records.Repository
}
