package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	configinadapter "algotimer/internal/modules/config/adapter/in"
	configoutadapter "algotimer/internal/modules/config/adapter/out"
	configservice "algotimer/internal/modules/config/service"
	configusecase "algotimer/internal/modules/config/usecase"
	sessioninadapter "algotimer/internal/modules/session/adapter/in"
	sessionoutadapter "algotimer/internal/modules/session/adapter/out"
	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
	sessionservice "algotimer/internal/modules/session/service"
	sessionusecase "algotimer/internal/modules/session/usecase"
	"algotimer/internal/platform/clock"
	"algotimer/internal/platform/config"
	"algotimer/internal/platform/eventloop"
	"algotimer/internal/platform/id"
	"algotimer/internal/platform/logging"
	"algotimer/internal/platform/tx"
	uiapp "algotimer/internal/ui/app"
)

type App struct {
	ConfigCLI  configinadapter.CLIHandler
	HistoryCLI sessioninadapter.HistoryCLIHandler

	logger  *logrus.Logger
	writer  *sessionservice.LogWriter
	closers []func() error
}

func New(cfg config.Config) (*App, error) {
	logger, closeLog, err := logging.New(logging.Options{
		Dir:    cfg.LogDir,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	app := &App{logger: logger, closers: []func() error{closeLog}}

	configUC := configusecase.NewInteractor(configservice.NewConfigService(
		configoutadapter.NewFileConfigStore(cfg.ConfigPath),
		configoutadapter.NewTUIPrompter(nil),
		logging.Component(logger, "config"),
	))

	sessionLog := sessionoutadapter.NewJSONSessionLog(cfg.LogPath, tx.NewFileLockManager(cfg.LockPath))
	transcript := sessionoutadapter.NewMarkdownTranscript(cfg.TranscriptPath)

	// The index is a rebuildable projection; running without it only costs
	// the fast stats path.
	var index sessionout.SessionIndex
	if sqliteIndex, err := sessionoutadapter.NewSQLiteSessionIndex(cfg.DBPath); err != nil {
		logger.WithError(err).Warn("session index unavailable")
	} else {
		index = sqliteIndex
		app.closers = append(app.closers, sqliteIndex.Close)
	}

	var notes sessionout.NoteStore
	if cfg.NotesDir != "" {
		notes = sessionoutadapter.NewVaultNoteStore(cfg.NotesDir)
	}

	app.writer = sessionservice.NewLogWriter(sessionLog, transcript, index, notes, logging.Component(logger, "log-writer"))
	historyUC := sessionusecase.NewHistoryInteractor(sessionservice.NewHistoryService(
		sessionLog, transcript, index, logging.Component(logger, "history"),
	))

	app.ConfigCLI = configinadapter.NewCLIHandler(configUC)
	app.HistoryCLI = sessioninadapter.NewHistoryCLIHandler(historyUC)
	return app, nil
}

// Close releases the index database and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// RunTUI loads the owner's config, running first-time setup if needed, and
// then drives practice sessions until the user quits.
func RunTUI(ctx context.Context, app *App) error {
	cfg, err := app.ConfigCLI.Load(ctx)
	if err != nil {
		return err
	}
	budgets := domain.Budgets{
		Read:   cfg.ReadTime,
		Think:  cfg.ThinkTime,
		Code:   cfg.CodeTime,
		Search: cfg.SearchTime,
	}
	app.logger.WithFields(logrus.Fields{
		"name":    cfg.Name,
		"created": cfg.Created,
	}).Info("config loaded")

	loop := eventloop.New()
	machine := sessionservice.NewMachine(
		clock.SystemClock{},
		loop,
		id.UUID{},
		app.writer,
		budgets,
		logging.Component(app.logger, "session"),
	)
	sessionTUI := sessioninadapter.NewTUIHandler(sessionusecase.NewInteractor(machine))

	model := uiapp.NewModel(cfg.Name, sessionTUI, app.HistoryCLI, loop)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
