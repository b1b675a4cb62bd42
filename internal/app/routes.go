package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current/partner", deps.UserHandler.SetPartner).Methods("PUT")

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.GetDayEvents).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/event/{eventId}/completed", deps.EventHandler.ToggleCompleted).Methods("PATCH")

	// Routines
	r.HandleFunc("/api/routine", deps.RoutineHandler.ListRoutines).Methods("GET")
	r.HandleFunc("/api/routine", deps.RoutineHandler.CreateRoutine).Methods("POST")
	r.HandleFunc("/api/routine/{routineId}", deps.RoutineHandler.UpdateRoutine).Methods("PUT")
	r.HandleFunc("/api/routine/{routineId}", deps.RoutineHandler.DeleteRoutine).Methods("DELETE")

	// Couple space
	r.HandleFunc("/api/couple/message", deps.CoupleHandler.GetMessages).Methods("GET")
	r.HandleFunc("/api/couple/message", deps.CoupleHandler.PostMessage).Methods("POST")

	// Journal
	r.HandleFunc("/api/journal", deps.JournalHandler.ListEntries).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/journal", deps.JournalHandler.AddEntry).Methods("POST")
	r.HandleFunc("/api/journal/{entryId}", deps.JournalHandler.UpdateEntry).Methods("PUT")
	r.HandleFunc("/api/journal/{entryId}", deps.JournalHandler.DeleteEntry).Methods("DELETE")

	// Stats
	r.HandleFunc("/api/stats/weekly", deps.StatsHandler.GetStats).Queries("date", "{date}").Methods("GET")

	// Export
	r.HandleFunc("/api/export/ical", deps.ExportHandler.GetICal).Methods("GET")
}
