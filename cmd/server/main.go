package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/database"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/mail"
	"github.com/julo-ch/www/internal/queue"
	"github.com/julo-ch/www/internal/router"
	"github.com/julo-ch/www/internal/service"
	"github.com/julo-ch/www/internal/session"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Env, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// nil when Redis is unreachable; cache and rate limiter degrade.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn(ctx, "redis unavailable; feed cache off, rate limit in-process")
	} else {
		defer rdb.Close()
	}

	sessions := session.NewManager(db, cfg.Session, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.RunPurger(ctx, cfg.Session.PurgeEvery)
	}()

	var mailer mail.Sender
	switch cfg.Mail.Delivery {
	case config.MailDirect:
		mailer = mail.NewSMTPSender(cfg.Mail)
	case config.MailQueue:
		mailer = service.NewQueueSender(cfg.Mail.RabbitMQURL, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := queue.StartContactConsumer(ctx, cfg.Mail.RabbitMQURL, mail.NewSMTPSender(cfg.Mail), logger.With("component", "contact-consumer"))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(ctx, "contact consumer stopped", "err", err)
			}
		}()
	default:
		mailer = mail.NewLogSender(logger)
	}

	e, err := router.New(router.Deps{
		Config:    cfg,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		DB:        db,
		Redis:     rdb,
		Sessions:  sessions,
		Mailer:    mailer,
		Log:       logger,
	})
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	go func() {
		logger.Info(ctx, "listening", "addr", cfg.Addr(), "env", cfg.Env, "db", cfg.DB.Driver, "mail", cfg.Mail.Delivery)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "shutdown", "err", err)
	}
	wg.Wait()
	logger.Info(shutdownCtx, "stopped")
}
