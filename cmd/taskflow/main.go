package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/agent"
	"taskflow/internal/app"
	"taskflow/internal/credential"
	"taskflow/internal/logging"
	"taskflow/internal/mailer"
	"taskflow/internal/model"
	"taskflow/internal/notify"
	"taskflow/internal/schedule"
	"taskflow/internal/source/remote"
	"taskflow/internal/store"
	appsync "taskflow/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskflow failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logCloser, err := logging.Setup(logging.DefaultLogPath(), slog.LevelInfo)
	if err == nil {
		defer logCloser.Close()
	}

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	token := apiToken()
	src := remote.NewAdapter(cfg.Backend.BaseURL, token)

	notifier := notify.NewDesktop()

	deliveryAgent := agent.New(notifier)
	deliveryAgent.Start()
	defer deliveryAgent.Stop()

	clearer := app.NewTaskReminderClearer(s, src)
	presenter := schedule.NewPresenter(
		notifier,
		clearer,
		s,
		deliveryAgent,
		time.Duration(cfg.Reminder.SnoozeMinutes)*time.Minute,
		cfg.Reminder.Sound,
	)
	scheduler := schedule.NewScheduler(s, deliveryAgent, presenter.Offer)
	defer scheduler.Stop(context.Background())
	reconciler := schedule.NewReconciler(s, deliveryAgent, presenter.Offer)

	poller := appsync.New(
		s, src, time.Duration(cfg.Backend.PollIntervalSec)*time.Second,
	)
	defer poller.Stop()

	draftMailer := mailer.New(cfg.Mailer.FromAddress, cfg.Mailer.DraftsDir)

	root := app.New(app.Deps{
		Store:      s,
		Source:     src,
		Poller:     poller,
		Scheduler:  scheduler,
		Reconciler: reconciler,
		Presenter:  presenter,
		Mailer:     draftMailer,
	})

	program := tea.NewProgram(root, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// apiToken loads the backend API token from the system keyring, falling
// back to the TASKFLOW_API_TOKEN environment variable.
func apiToken() string {
	token, err := credential.Get(credential.APITokenKey)
	if err == nil && token != "" {
		return token
	}
	if err != nil {
		slog.Debug("reading token from keyring", "error", err)
	}
	return os.Getenv("TASKFLOW_API_TOKEN")
}
