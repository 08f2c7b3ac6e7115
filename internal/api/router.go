package api

import (
	"net/http"

	"route-selection-client/internal/api/handlers"
	"route-selection-client/internal/platform/logger"
	"route-selection-client/internal/services"

	"github.com/go-playground/validator/v10"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// docs may be nil when artifacts are served from elsewhere (object storage).
func NewRouter(orch *services.Orchestrator, docs handlers.DocumentSource, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	sel := &handlers.SelectorHandler{Orch: orch, Validate: validator.New()}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("GET /state", sel.State)

	mux.HandleFunc("POST /selection/mode", sel.SetMode)
	mux.HandleFunc("POST /selection/depot", sel.AddDepot)
	mux.HandleFunc("DELETE /selection/depot", sel.ClearDepot)
	mux.HandleFunc("POST /selection/stops", sel.AddStop)
	mux.HandleFunc("DELETE /selection/stops/{index}", sel.RemoveStop)

	mux.HandleFunc("POST /search", sel.Search)
	mux.HandleFunc("POST /results/clear", sel.ClearResults)
	mux.HandleFunc("POST /events", sel.Event)

	mux.HandleFunc("POST /route/period", sel.SetTimePeriod)
	mux.HandleFunc("POST /route/style", sel.SetMapStyle)
	mux.HandleFunc("POST /route/generate", sel.Generate)

	if docs != nil {
		art := &handlers.ArtifactHandler{Docs: docs}
		mux.HandleFunc("GET /artifacts/{id}", art.Get)
	}

	return requestIDMiddleware(loggingMiddleware(mux, log))
}
