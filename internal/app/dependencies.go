package app

import (
	"database/sql"

	"github.com/duetplan/duetplan/internal/config"
	"github.com/duetplan/duetplan/internal/event_bus"
	"github.com/duetplan/duetplan/internal/utils"
	"github.com/duetplan/duetplan/pkg/couple"
	"github.com/duetplan/duetplan/pkg/event"
	"github.com/duetplan/duetplan/pkg/export"
	"github.com/duetplan/duetplan/pkg/journal"
	"github.com/duetplan/duetplan/pkg/reminder"
	"github.com/duetplan/duetplan/pkg/routine"
	"github.com/duetplan/duetplan/pkg/stats"
	"github.com/duetplan/duetplan/pkg/store"
	"github.com/duetplan/duetplan/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Store *store.Store
	Bus   *event_bus.EventBus
	Clock utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	EventService event.EventService
	EventHandler *event.EventHandler

	RoutineService routine.Service
	RoutineHandler *routine.Handler

	CoupleService couple.Service
	CoupleHandler *couple.Handler

	JournalService journal.Service
	JournalHandler *journal.Handler

	StatsService     stats.Service
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	Exporter      *export.Exporter
	ExportHandler *export.Handler

	ReminderScanner *reminder.Scanner
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Store = store.NewStore(store.NewSQLBackend(db))
	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(deps.Store)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.EventService = event.NewEventService(deps.Store, deps.Bus)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.RoutineService = routine.NewService(deps.Store, deps.Clock, deps.Bus)
	deps.RoutineHandler = routine.NewHandler(deps.RoutineService)

	deps.CoupleService = couple.NewService(deps.Store, deps.UserService, deps.Clock)
	deps.CoupleHandler = couple.NewHandler(deps.CoupleService)

	deps.JournalService = journal.NewService(deps.Store, deps.Clock)
	deps.JournalHandler = journal.NewHandler(deps.JournalService)

	deps.StatsService = stats.NewStatsService(deps.EventService)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	deps.Exporter = export.NewExporter(deps.EventService)
	deps.ExportHandler = export.NewHandler(deps.Exporter)

	deps.ReminderScanner = reminder.NewScanner(
		deps.Store, deps.UserService, deps.Clock, reminder.LogNotifier{}, cfg.Reminder.WindowMinutes,
	)
	if cfg.Reminder.Enabled {
		deps.ReminderScanner.Listen(deps.Bus)
	}

	return deps
}
