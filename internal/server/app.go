// Package server initializes and runs the to-do list server: storage,
// services, the HTTP API, the gRPC health listener and the session sweeper.
// It handles graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/memory"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todolist/internal/server/services"
	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"

	gs "github.com/dmitrijs2005/todolist/internal/server/grpc"
	hs "github.com/dmitrijs2005/todolist/internal/server/http"
)

type App struct {
	config  *config.Config
	logger  *logging.ZapLogger
	db      *sql.DB
	http    *hs.Server
	health  *gs.HealthServer
	sweeper *services.SessionSweeper
}

// storage is the repository backend chosen by the DSN.
type storage struct {
	db          *sql.DB
	dbtx        dbx.DBTX
	tx          dbx.Transactor
	pinger      gs.Pinger
	repomanager repomanager.RepositoryManager
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.Production)
	if err != nil {
		return nil, err
	}

	st, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	clock := abtime.NewRealTime()
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	identity := services.NewIdentityService(st.dbtx, st.repomanager, hasher, logger)
	sessions := services.NewSessionService(st.dbtx, st.repomanager, clock, c.SessionTTL, logger)

	svc := hs.Services{
		Auth:     services.NewAuthService(st.tx, identity, sessions, logger),
		Sessions: sessions,
		Notes:    services.NewNoteService(st.dbtx, st.repomanager),
	}
	verifiers := services.Verifiers{
		Password:  services.NewPasswordVerifier(st.dbtx, st.repomanager, hasher),
		OAuth:     services.NewOAuthVerifier(),
		Principal: services.NewPrincipalVerifier(),
	}

	var oauth auth.OAuthProvider
	if c.OAuthEnabled() {
		p, err := auth.NewGoogleProvider(ctx, c.GoogleClientID, c.GoogleClientSecret, c.GoogleCallbackURL)
		if err != nil {
			logger.Warn(ctx, "Google sign-in disabled", "error", err)
		} else {
			oauth = p
		}
	}

	tokens := auth.NewTokenCodec([]byte(c.SessionSecret), sessions.Now)

	return &App{
		config:  c,
		logger:  logger,
		db:      st.db,
		http:    hs.NewServer(c, svc, verifiers, oauth, tokens, logger),
		health:  gs.NewHealthServer(c.GRPCAddr, st.pinger, clock, 0, logger),
		sweeper: services.NewSessionSweeper(sessions, clock, c.SessionSweepInterval, logger),
	}, nil
}

func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (*storage, error) {
	if c.InMemory() {
		logger.Warn(ctx, "Using in-memory storage, data is lost on restart")
		return &storage{
			tx:          memory.Transactor{},
			repomanager: memory.NewRepositoryManager(),
		}, nil
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &storage{
		db:          db,
		dbtx:        db,
		tx:          dbx.NewSQLTransactor(db, nil),
		pinger:      db,
		repomanager: rm,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run starts every component and blocks until ctx is cancelled, a signal
// arrives, or a listener fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		app.logger.Error(ctx, err.Error())
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancelFunc()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			fail(fmt.Errorf("http server: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			fail(fmt.Errorf("grpc server: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.logger.Sync()

	return firstErr
}
