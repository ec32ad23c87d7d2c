package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/config"
	"github.com/niledreams/backend-travel/internal/notify"
	"github.com/niledreams/backend-travel/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := obs.NewLogger("json", "info")
		boot.Fatal().Err(err).Msg("load config")
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Username: redisOpts.Username,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Logger:      asynqLogger{logger},
		},
	)

	var email common.EmailSender = common.NopEmailSender{}
	opsEmail := os.Getenv("OPS_EMAIL")
	if opsEmail == "" {
		logger.Warn().Msg("OPS_EMAIL not set, operator notifications disabled")
	}

	worker := &notify.Worker{
		Email:    email,
		OpsEmail: opsEmail,
		Logger:   logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		srv.Shutdown()
	}()

	logger.Info().Msg("worker started")
	if err := srv.Run(worker.Mux()); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
	logger.Info().Msg("worker stopped")
}

// asynqLogger bridges asynq's logging interface onto zerolog.
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
