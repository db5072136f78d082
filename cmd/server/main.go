package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/carrier-im/carrier/internal/api"
	apihandlers "github.com/carrier-im/carrier/internal/api/handlers"
	"github.com/carrier-im/carrier/internal/config"
	"github.com/carrier-im/carrier/internal/crypto"
	"github.com/carrier-im/carrier/internal/database"
	"github.com/carrier-im/carrier/internal/logging"
	"github.com/carrier-im/carrier/internal/realtime"
	"github.com/carrier-im/carrier/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configViper := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "carrier-server",
		Short: "Realtime messaging server",
		Long:  "Carrier is a realtime messaging server with presence tracking and conversation fanout over Socket.IO.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configViper)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("http-address", "", "address the HTTP server listens on")
	flags.String("database-path", "", "path to the SQLite database file")
	flags.String("master-secret", "", "master secret used to derive the token signing key")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	bind := func(key, flag string) {
		if err := configViper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	bind("http.address", "http-address")
	bind("database.path", "database-path")
	bind("auth.master_secret", "master-secret")
	bind("log.level", "log-level")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.AppConfig) error {
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Infof("database ready at %s", cfg.DatabasePath)

	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		return err
	}

	users := store.NewUsers(db.DB)
	conversations := store.NewConversations(db.DB)
	messages := store.NewMessages(db.DB)

	socketServer := realtime.NewSocketIOServer(
		jwtManager,
		users,
		conversations,
		messages,
		realtime.Options{
			Path:           cfg.SocketPath,
			OutboxCapacity: cfg.SessionOutboxCap,
		},
		log,
	)
	defer socketServer.Close()

	restAPI := apihandlers.NewAPI(
		users,
		conversations,
		messages,
		jwtManager,
		socketServer,
		log,
		time.Now,
		uuid.NewString,
	)

	router := api.NewRouter(restAPI, jwtManager, socketServer.HandleSocketIO(), api.RouterConfig{
		AllowedOrigins:  cfg.AllowedOrigins,
		SocketPath:      cfg.SocketPath,
		RateLimitWindow: cfg.RateLimitWindow,
		RateLimitMax:    cfg.RateLimitMax,
	}, log)

	server := &http.Server{
		Addr:    cfg.HTTPAddress,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (socket endpoint %s)", cfg.HTTPAddress, cfg.SocketPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Infof("received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Infof("shutdown complete")
	return nil
}
