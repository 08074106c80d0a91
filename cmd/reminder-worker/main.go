package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"contas/internal/backend"
	"contas/internal/cli"
	"contas/internal/config"
	"contas/internal/core"
	applog "contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/notify"
	"contas/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentReminder)
	logger.Info("Starting reminder-worker", "schedule", cfg.ReminderSchedule, "timezone", cfg.Timezone)

	m := metrics.New()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// reminders never publish status messages
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger, m).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	processor := services.NewReminderProcessor(res.Store, newNotifier(cfg, logger), m)
	loc := cfg.Location()

	scheduler := cron.New(cron.WithLocation(loc))

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(context.Context) {
		// let a running pass finish before the store is closed
		<-scheduler.Stop().Done()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	run := func() {
		today := core.DateOf(time.Now().In(loc))
		result, err := processor.ProcessReminders(ctx, today)
		if err != nil {
			logger.Error("Reminder run failed", "error", err, "today", today.String())
			return
		}
		logger.Info("Reminder run complete",
			"today", today.String(),
			"sent", result.Sent,
			"skipped", result.Skipped,
			"failed", result.Failed)
	}

	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, run); err != nil {
		logger.Error("Invalid reminder schedule", "error", err, "schedule", cfg.ReminderSchedule)
		os.Exit(1)
	}

	// catch up on anything missed while the worker was down
	run()
	scheduler.Start()

	if err := cli.ServeMetrics(ctx, cfg.MetricsAddr, m, logger.Logger); err != nil {
		logger.Error("Metrics server failed", "error", err, "addr", cfg.MetricsAddr)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}

func newNotifier(cfg *config.Config, logger *applog.Logger) services.Notifier {
	if cfg.SMTPHost == "" {
		logger.Info("SMTP not configured, reminders are logged only")
		return notify.LogNotifier{Locale: cfg.Locale}
	}
	logger.Info("Email reminders enabled", "smtp_host", cfg.SMTPHost, "to", cfg.ReminderEmail)
	return notify.NewEmailNotifier(notify.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SenderEmail,
		To:       cfg.ReminderEmail,
		Locale:   cfg.Locale,
	})
}
