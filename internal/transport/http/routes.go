package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Routes wires the share entry point plus the ambient endpoints. objectsDir
// is served under /objects/ so resolved retrieval URLs dereference when the
// filesystem store backs the content store.
func Routes(h *Handler, objectsDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/modes", h.ListModes)
	r.Post("/share", h.Share)

	if objectsDir != "" {
		r.Handle("/objects/*", http.StripPrefix("/objects/", http.FileServer(http.Dir(objectsDir))))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
