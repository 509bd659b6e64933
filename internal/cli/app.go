// Package cli implements the interactive hhvault client: a REPL over the
// identity, grant, record, and upload services.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/hhvault/hhvault/internal/blobstore"
	"github.com/hhvault/hhvault/internal/config"
	"github.com/hhvault/hhvault/internal/ledger"
	"github.com/hhvault/hhvault/internal/logging"
	"github.com/hhvault/hhvault/internal/notify"
	"github.com/hhvault/hhvault/internal/registry"
	"github.com/hhvault/hhvault/internal/repositories/repomanager"
	"github.com/hhvault/hhvault/internal/services"
	"github.com/hhvault/hhvault/internal/session"
	"github.com/hhvault/hhvault/internal/wallet"
)

type App struct {
	config *config.Config
	logger logging.Logger

	ledger   *ledger.Ledger
	db       *sql.DB
	keystore *wallet.Keystore
	blobs    blobstore.Store
	sessions *session.Manager
	broker   *notify.Broker

	identity *services.IdentityService
	grants   *services.GrantService
	records  *services.RecordService
	uploads  *services.UploadPipeline

	token  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewDefault()

	app := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	l, err := ledger.Open(c.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("ledger init error: %w", err)
	}
	app.ledger = l

	ks, err := wallet.NewKeystore(c.KeystoreDir, l, app.confirmTransaction)
	if err != nil {
		return nil, fmt.Errorf("keystore init error: %w", err)
	}
	app.keystore = ks

	db, repos, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	app.db = db

	blobs, err := openBlobStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	app.blobs = blobs

	reg := registry.NewLedgerRegistry(l)
	app.sessions = session.NewManager(c.SessionSecret, c.SessionValidity)
	app.broker = notify.NewBroker()

	app.identity = services.NewIdentityService(reg, ks, app.sessions, logger)
	app.grants = services.NewGrantService(db, repos, reg, ks, app.sessions, app.broker, logger)
	app.records = services.NewRecordService(db, repos, app.grants, ks, app.sessions, app.broker, logger)
	app.uploads = services.NewUploadPipeline(ks, blobs, app.records, app.sessions, c.AttestValue, logger)

	return app, nil
}

func openStorage(ctx context.Context, c *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	var (
		db    *sql.DB
		repos repomanager.RepositoryManager
		err   error
	)

	switch c.StorageDriver {
	case "postgres":
		db, err = repomanager.OpenPostgres(c.DatabaseDSN)
		repos = repomanager.NewPostgresRepositoryManager()
	default:
		db, err = repomanager.OpenSQLite(c.SQLitePath)
		repos = repomanager.NewSQLiteRepositoryManager()
	}
	if err != nil {
		return nil, nil, err
	}

	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, nil, err
	}
	return db, repos, nil
}

func openBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	if c.BlobBackend == "memory" {
		return blobstore.NewMemoryStore(c.GatewayBase), nil
	}
	return blobstore.NewS3Store(ctx, blobstore.S3Config{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		GatewayBase:  c.GatewayBase,
	})
}

// confirmTransaction is the signer's interactive approval hook.
func (a *App) confirmTransaction(from, to, value string) bool {
	fmt.Fprintf(a.out, "Confirm transaction %s -> %s (value %s)?\n", from, to, value)
	answer, err := GetSimpleText(a.reader, "Type y to approve", a.out)
	if err != nil {
		return false
	}
	return answer == "y" || answer == "Y"
}

func (a *App) isLoggedIn() bool {
	return a.token != "" && a.sessions.Principal() != nil
}

func (a *App) getStatus() string {
	p := a.sessions.Principal()
	if p == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", p.Role, p.HHNumber)
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	go a.identity.WatchAccountChanges(ctx)

	fmt.Fprintln(a.out, "Welcome to hhvault (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.ledger != nil {
		_ = a.ledger.Close()
	}
}
