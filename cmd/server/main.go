package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/engine"
	"github.com/Nixie-Tech-LLC/nereus/internal/history"
	"github.com/Nixie-Tech-LLC/nereus/internal/maintenance"
	"github.com/Nixie-Tech-LLC/nereus/internal/metrics"
	"github.com/Nixie-Tech-LLC/nereus/internal/notify"
	"github.com/Nixie-Tech-LLC/nereus/internal/runner"
	"github.com/Nixie-Tech-LLC/nereus/internal/store"
	"github.com/Nixie-Tech-LLC/nereus/internal/sysinfo"
)

const shutdownGrace = 10 * time.Second

func main() {
	env := LoadEnvironment()
	setupLogging(env)

	scheduleStore, err := store.NewFileStore(env.SchedulesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", env.SchedulesPath).Msg("schedule store init failed")
	}

	runLog, err := history.Open(env.HistoryPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", env.HistoryPath).Msg("history database init failed")
	}
	defer runLog.Close()

	notifier := notify.NewNotifier(notify.NewSMTPMailer(
		env.SMTPServer, env.SMTPPort, env.SenderEmail, env.SenderPassword,
	))

	eng := engine.New(engine.Config{
		Store:    scheduleStore,
		Runner:   runner.New(env.RsyncPath, env.LogsDir, env.RunTimeout),
		Notifier: notifier,
		RunLog:   runLog,
		Metrics:  metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer),
	})
	eng.Reconcile()

	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()
	go eng.Run(engineCtx)

	janitor := maintenance.NewJanitor(runLog, env.HistoryRetention)
	if err := janitor.Start(); err != nil {
		log.Fatal().Err(err).Msg("history janitor init failed")
	}

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, scheduleStore, eng, runLog, notifier, sysinfo.NewBrowser())

	server := &http.Server{Addr: env.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("address", env.ServerAddress).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	stopEngine()
	if err := eng.WaitRuns(shutdownCtx); err != nil {
		log.Warn().Msg("copies still in flight at shutdown, their outcomes may be lost")
	}
	janitor.Stop()
	log.Info().Msg("stopped")
}

// setupLogging mirrors every line to a file under the logs dir, next to
// the per-run rsync logs.
func setupLogging(env Environment) {
	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := os.MkdirAll(env.LogsDir, 0750); err == nil {
		logFile, err := os.OpenFile(
			filepath.Join(env.LogsDir, "nereus.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640,
		)
		if err == nil {
			log.Logger = log.Output(zerolog.MultiLevelWriter(os.Stdout, logFile))
			return
		}
	}
	log.Logger = log.Output(os.Stdout)
}
