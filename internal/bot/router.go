package bot

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the callback routes
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.HandleIdentity).Methods(http.MethodGet)
	router.HandleFunc("/", h.HandleEvent).Methods(http.MethodPost)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return router
}
