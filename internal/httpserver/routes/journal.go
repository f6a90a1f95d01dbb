package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
	"github.com/MrSnakeDoc/serene/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/serene/internal/httpserver/mw"
)

func init() {
	Register(registerJournal)
}

func registerJournal(r chi.Router, d deps.Deps) {
	r.Get("/api/icons", handlers.Icons(d))

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(d.Auth, d.Logger))

		r.Get("/api/dashboard", handlers.Dashboard(d))
		r.Post("/api/prompt", handlers.Prompt(d))

		r.Get("/api/entries", handlers.ListEntries(d))
		r.Post("/api/entries", handlers.SaveEntry(d))
		r.Put("/api/entries/{id}", handlers.UpdateEntry(d))
		r.Delete("/api/entries/{id}", handlers.DeleteEntry(d))

		r.Get("/api/habits", handlers.ListHabits(d))
		r.Post("/api/habits", handlers.AddHabit(d))
		r.Patch("/api/habits/{id}", handlers.UpdateHabit(d))
		r.Delete("/api/habits/{id}", handlers.DeleteHabit(d))

		r.Get("/api/habit-logs", handlers.ListHabitLogs(d))
		r.Post("/api/habit-logs/{date}/toggle", handlers.ToggleHabit(d))
	})
}
