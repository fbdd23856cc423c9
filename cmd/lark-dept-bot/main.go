package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/lark-dept-bot/internal/bot"
	"github.com/yuya-takeyama/lark-dept-bot/internal/config"
	"github.com/yuya-takeyama/lark-dept-bot/internal/database"
	"github.com/yuya-takeyama/lark-dept-bot/internal/dedup"
	"github.com/yuya-takeyama/lark-dept-bot/internal/directory"
	"github.com/yuya-takeyama/lark-dept-bot/internal/lark"
	"github.com/yuya-takeyama/lark-dept-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Dedup store
	store, db, err := openDedupStore(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	keyFunc, err := dedup.KeyFuncFor(cfg.Dedup.Identity)
	if err != nil {
		return err
	}
	cache := dedup.NewCache(store, keyFunc, cfg.Dedup.FailOpen, log)

	if purger, ok := store.(*dedup.SQLiteStore); ok {
		go purgeLoop(ctx, purger, cfg.Dedup.PurgeInterval, log)
	}

	// Open API client
	client := lark.NewClient(cfg.Lark.AppID, cfg.Lark.AppSecret,
		lark.WithBaseURL(cfg.Lark.BaseURL),
		lark.WithRequestTimeout(cfg.Lark.RequestTimeout),
		lark.WithDepartmentTimeout(cfg.Lark.DepartmentTimeout),
		lark.WithDirectoryTimeout(cfg.Lark.DirectoryTimeout),
		lark.WithLogger(log),
	)

	handler := bot.NewHandler(bot.Deps{
		Tokens:      client,
		Directory:   client,
		Departments: departmentNamer(cfg, client, log),
		Sender:      client,
		Dedup:       cache,
		Logger:      log,
	})

	srv := &http.Server{
		Handler:      bot.NewRouter(handler),
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("dedup_backend", cfg.Dedup.Backend).
			Str("dedup_identity", cfg.Dedup.Identity).
			Dur("dedup_window", cfg.Dedup.Window).
			Dur("reply_budget", cfg.Lark.ReplyBudget()).
			Msg("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("could not listen on port %d: %w", cfg.Server.Port, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

func openDedupStore(cfg *config.Config) (dedup.Store, *sql.DB, error) {
	switch cfg.Dedup.Backend {
	case config.BackendMemory:
		return dedup.NewMemoryStore(cfg.Dedup.Window), nil, nil
	case config.BackendSQLite:
		db, err := database.OpenAndMigrate(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open dedup database: %w", err)
		}
		return dedup.NewSQLiteStore(db, cfg.Dedup.Window), db, nil
	}
	return nil, nil, fmt.Errorf("unknown dedup backend: %s", cfg.Dedup.Backend)
}

func purgeLoop(ctx context.Context, store *dedup.SQLiteStore, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to purge dedup records")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("Purged expired dedup records")
			}
		}
	}
}

func departmentNamer(cfg *config.Config, client *lark.Client, log zerolog.Logger) directory.DepartmentNamer {
	table := directory.NewStaticTable(nil)
	if cfg.Directory.DepartmentsFile != "" {
		loaded, err := directory.LoadStaticTable(cfg.Directory.DepartmentsFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Directory.DepartmentsFile).Msg("Failed to load department table")
		} else {
			table = loaded
			log.Info().Int("departments", table.Len()).Msg("Loaded department table")
		}
	}

	fallback := &directory.Fallback{Table: table}
	if cfg.Directory.RemoteFallback {
		fallback.Secondary = client
	}
	return fallback
}
