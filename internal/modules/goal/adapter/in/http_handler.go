package in

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	goalin "learnjourney/internal/modules/goal/port/in"
)

// HTTPHandler exposes read-only goal state for the resident watch mode.
type HTTPHandler struct {
	usecase goalin.Usecase
}

func NewHTTPHandler(usecase goalin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

// Register mounts the goal routes on r.
func (h HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/week", h.Week).Methods(http.MethodGet)
	r.HandleFunc("/history", h.History).Methods(http.MethodGet)
}

func (h HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Week shows the week containing today, shifted by the optional ?offset=n.
// The shift is undone before returning so the viewed week is left as found.
func (h HTTPHandler) Week(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		offset = n
	}
	out, err := h.usecase.ChangeViewedWeek(r.Context(), offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if offset != 0 {
		if _, err := h.usecase.ChangeViewedWeek(r.Context(), -offset); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
