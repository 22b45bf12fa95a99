package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/config"
	"github.com/lazypower/memoria/internal/events"
	"github.com/lazypower/memoria/internal/logging"
	"github.com/lazypower/memoria/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.Auth.JWTSecret == config.DevSecret {
		log.Warn("using the development JWT secret; set MEMORIA_AUTH_JWT_SECRET")
	}
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	pub := events.New(cfg.Redis)
	defer pub.Close()
	if cfg.Redis.Addr != "" {
		log.Info("publishing interaction events", zap.String("redis", cfg.Redis.Addr), zap.String("channel", cfg.Redis.Channel))
	}

	srv := server.New(db, issuer, VersionString(), server.WithEvents(pub), server.WithLogger(log))
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("memoria serving", zap.String("addr", addr), zap.String("db", db.Path))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
