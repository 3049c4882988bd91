package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"example.com/hangman/internal/auth"
	"example.com/hangman/internal/config"
	"example.com/hangman/internal/httpapi"
	"example.com/hangman/internal/session"
	"example.com/hangman/internal/store"
	"example.com/hangman/internal/words"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool
	rdb *redis.Client

	srv *http.Server
}

type Options struct {
	Static http.Handler // optional; if nil, no frontend is served
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (_ *App, err error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log}
	// release whatever was opened before the failure
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// --- Words ---
	catalog, err := a.loadCatalog(pingCtx)
	if err != nil {
		return nil, err
	}
	log.Info("word list loaded",
		"source", cfg.Words.Source,
		"easy", catalog.Len(words.Easy),
		"medium", catalog.Len(words.Medium),
		"hard", catalog.Len(words.Hard),
	)

	// --- Session persistence ---
	var persist session.Persistence
	switch cfg.Session.Store {
	case config.StoreRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		persist = session.NewRedisStore(a.rdb, cfg.Session.TTL)
	default:
		persist = session.NewMemoryStore(cfg.Session.TTL)
	}

	// --- Sessions ---
	tokens := auth.NewService([]byte(cfg.Auth.Secret))
	sessions := session.NewService(session.Config{}, persist, catalog, log)
	wsSrv := session.NewServer(sessions, tokens, log)

	sessionH := &httpapi.SessionHandler{
		Sessions: sessions,
		Tokens:   tokens,
		Catalog:  catalog,
		TokenTTL: cfg.Auth.TokenTTL,
		Log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	wsSrv.RegisterRoutes(mux)
	mux.HandleFunc("/api/session", sessionH.Create)
	mux.HandleFunc("/api/difficulties", sessionH.Difficulties)

	if opts.Static != nil {
		mux.Handle("/", opts.Static)
	}

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.RequestLogger(log)(mux),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

func (a *App) loadCatalog(ctx context.Context) (*words.Catalog, error) {
	if a.cfg.Words.Source != config.WordsFromPostgres {
		catalog, err := words.LoadFile(a.cfg.Words.File)
		if err != nil {
			return nil, fmt.Errorf("load words: %w", err)
		}
		return catalog, nil
	}

	db, err := pgxpool.New(ctx, a.cfg.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	a.db = db
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	ws := store.NewWordStore(db)
	if a.cfg.Words.Import {
		n, err := importWordFile(ctx, ws, a.cfg.Words.File)
		if err != nil {
			return nil, err
		}
		a.log.Info("word file imported", "file", a.cfg.Words.File, "inserted", n)
	}

	list, err := ws.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return words.FromWords(list), nil
}

type wordInserter interface {
	Insert(ctx context.Context, words []string) (int, error)
}

// importWordFile copies the word file into the database; words already
// stored are skipped.
func importWordFile(ctx context.Context, ins wordInserter, path string) (int, error) {
	catalog, err := words.LoadFile(path)
	if err != nil {
		return 0, fmt.Errorf("import words: %w", err)
	}
	var list []string
	for _, t := range words.Tiers {
		list = append(list, catalog.Words(t)...)
	}
	n, err := ins.Insert(ctx, list)
	if err != nil {
		return n, fmt.Errorf("import words: %w", err)
	}
	return n, nil
}

// Handler is the root handler, exposed for tests.
func (a *App) Handler() http.Handler { return a.srv.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.rdb != nil {
		err := a.rdb.Close()
		a.rdb = nil
		return err
	}
	return nil
}
