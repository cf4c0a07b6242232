package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yify/yify-api/internal/auth"
	"github.com/yify/yify-api/internal/config"
	httpserver "github.com/yify/yify-api/internal/http"
	"github.com/yify/yify-api/internal/mail"
	"github.com/yify/yify-api/internal/repository"
	"github.com/yify/yify-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[yify-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	repo := repository.New(st)

	tokens := auth.NewTokenService([]byte(cfg.SecretKey))
	sessions := auth.NewSessionManager(tokens, repo.Users, auth.SessionTTLs{
		Access:  time.Duration(cfg.AccessTokenExpMinutes) * time.Minute,
		Refresh: time.Duration(cfg.RefreshTokenExpMinutes) * time.Minute,
		Reset:   time.Duration(cfg.ResetTokenExpMinutes) * time.Minute,
	})

	var mailer mail.Sender = mail.Disabled{Logger: logger}
	if cfg.MailConfigured() {
		mailer = mail.NewSMTPSender(mail.Options{
			Server:   cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
			Logger:   logger,
		})
	} else {
		logger.Println("mail: SMTP not configured, password-reset mail disabled")
	}

	server := httpserver.New(cfg, st, repo, sessions, mailer, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
