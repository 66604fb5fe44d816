// Package router wires every HTTP route of the service onto a chi router.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/appointments-api/internal/http/handlers/appointment"
	"github.com/aanand-mishra/appointments-api/internal/http/middleware"
	"github.com/aanand-mishra/appointments-api/internal/storage"
	"github.com/aanand-mishra/appointments-api/internal/utils/response"
)

const msgNotFound = "The requested resource was not found."

// New returns the application's handler.
//
// Route table:
//
//	GET  /                         → staticDir/index.html (the booking page)
//	POST /submit-booking           → create or replace an appointment
//	POST /modify-appointment       → change some fields of an appointment
//	POST /cancel-appointment       → delete an appointment
//	GET  /api/appointments         → list appointments (JSON)
//	GET  /api/appointments/{phone} → one appointment (JSON)
//	GET  /healthz                  → liveness
//	GET  /*                        → other files under staticDir
//
// Anything else, including a known path with the wrong method, gets the
// plain-text 404.
func New(store storage.Storage, staticDir string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)

	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)

	r.Get("/healthz", healthz)

	r.Post("/submit-booking", appointment.Book(store))
	r.Post("/modify-appointment", appointment.Modify(store))
	r.Post("/cancel-appointment", appointment.Cancel(store))

	r.Route("/api/appointments", func(r chi.Router) {
		r.Get("/", appointment.GetList(store))
		r.Get("/{phone}", appointment.GetByPhone(store))
	})

	r.Get("/*", staticFiles(staticDir))

	return r
}

// NotFound answers every unmatched route or method.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	response.WriteText(w, http.StatusNotFound, msgNotFound)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	response.WriteText(w, http.StatusOK, "ok")
}

// staticFiles serves regular files from dir, with "/" mapped to
// index.html. Directories and missing files fall through to NotFound.
func staticFiles(dir string) http.HandlerFunc {
	root := http.Dir(dir)

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "/" {
			name = "/index.html"
		}

		// http.Dir confines name to dir.
		f, err := root.Open(name)
		if err != nil {
			NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			NotFound(w, r)
			return
		}

		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
