package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	goalinadapter "learnjourney/internal/modules/goal/adapter/in"
	goaloutadapter "learnjourney/internal/modules/goal/adapter/out"
	"learnjourney/internal/modules/goal/domain"
	goaldto "learnjourney/internal/modules/goal/dto"
	goalin "learnjourney/internal/modules/goal/port/in"
	goalservice "learnjourney/internal/modules/goal/service"
	goalusecase "learnjourney/internal/modules/goal/usecase"
	journalinadapter "learnjourney/internal/modules/journal/adapter/in"
	journaloutadapter "learnjourney/internal/modules/journal/adapter/out"
	journalservice "learnjourney/internal/modules/journal/service"
	journalusecase "learnjourney/internal/modules/journal/usecase"
	"learnjourney/internal/platform/clock"
	"learnjourney/internal/platform/config"
	"learnjourney/internal/platform/id"
	"learnjourney/internal/platform/logging"
	"learnjourney/internal/platform/metrics"
	uiapp "learnjourney/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     hclog.Logger
	Clock      clock.Clock
	Goals      goalin.Usecase
	Metrics    *metrics.GoalMetrics
	GoalCLI    goalinadapter.CLIHandler
	GoalHTTP   goalinadapter.HTTPHandler
	JournalCLI journalinadapter.CLIHandler

	db *sql.DB
}

// New wires the application against the SQLite database in cfg.
// Log output goes to logOut; nil discards it.
func New(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	var log hclog.Logger
	if logOut == nil {
		log = logging.Discard()
	} else {
		log = logging.New(cfg.LogLevel, logOut)
	}
	clk := clock.SystemClock{Location: cfg.Location}
	return newApp(ctx, cfg, clk, id.UUID{}, log)
}

func newApp(ctx context.Context, cfg config.Config, clk clock.Clock, ids id.Generator, log hclog.Logger) (*App, error) {
	policy, err := domain.ParseCompletionPolicy(cfg.Completion)
	if err != nil {
		return nil, err
	}

	db, err := goaloutadapter.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	store, err := goaloutadapter.NewSQLiteStateStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new goal store: %w", err)
	}
	archive, err := goaloutadapter.NewSQLiteHistoryArchive(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new goal archive: %w", err)
	}
	engine, err := goalservice.NewEngine(ctx, clk, ids, store, goalservice.Options{
		Location:   cfg.Location,
		WeekStart:  cfg.WeekStart,
		Completion: policy,
		Logger:     log.Named("engine"),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load goal: %w", err)
	}

	m := metrics.NewGoalMetrics()
	goalUC := instrument(goalusecase.NewInteractor(engine, archive, clk, log.Named("goal")), m)

	journalUC := journalusecase.NewInteractor(
		journaloutadapter.NewGoalSnapshotSource(goalUC),
		journaloutadapter.NewFileNoteStore(cfg.JournalDir),
		journalservice.NewRenderer(),
		clk,
	)

	return &App{
		Config:     cfg,
		Logger:     log,
		Clock:      clk,
		Goals:      goalUC,
		Metrics:    m,
		GoalCLI:    goalinadapter.NewCLIHandler(goalUC),
		GoalHTTP:   goalinadapter.NewHTTPHandler(goalUC),
		JournalCLI: journalinadapter.NewCLIHandler(journalUC),
		db:         db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// NewScheduler returns a midnight scheduler that ticks the goal usecase and
// re-arms itself after each tick.
func (a *App) NewScheduler(ctx context.Context, after goalservice.TimerFactory) *goalservice.RolloverScheduler {
	log := a.Logger.Named("rollover")
	return goalservice.NewRolloverScheduler(a.Clock, a.Config.Location, after, log, func() {
		snap, err := a.Goals.Tick(ctx)
		if err != nil {
			log.Error("midnight rollover failed", "error", err)
			return
		}
		log.Debug("midnight rollover", "streak", snap.CurrentStreak, "finished", snap.PeriodFinished)
	})
}

func RunTUI(ctx context.Context, app *App) error {
	updates := make(chan goaldto.GoalOutput, 8)
	cancel := app.Goals.Subscribe(func(out goaldto.GoalOutput) {
		select {
		case updates <- out:
		default:
			app.Logger.Debug("dropping goal update, ui is behind")
		}
	})
	defer cancel()

	scheduler := app.NewScheduler(ctx, nil)
	scheduler.Schedule()
	defer scheduler.Stop()

	model := uiapp.NewModel(app.GoalCLI, app.JournalCLI, updates)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Router serves the read-only goal routes plus /metrics and /healthz.
func (a *App) Router() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", a.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	a.GoalHTTP.Register(r)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CombinedLoggingHandler(a.Logger.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true}), r),
	)
}

// RunWatch keeps the goal alive across midnights and serves Router on addr
// until ctx is cancelled.
func RunWatch(ctx context.Context, app *App, addr string) error {
	if snap, err := app.Goals.Snapshot(ctx); err == nil {
		app.Metrics.Observe(sample(snap))
	}

	scheduler := app.NewScheduler(ctx, nil)
	next := scheduler.Schedule()
	defer scheduler.Stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.Logger.Info("watching goal", "addr", ln.Addr().String(), "next_rollover", next)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
