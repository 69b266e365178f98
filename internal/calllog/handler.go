package calllog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// Handler serves GET /api/calls/{callID}/transcript.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type transcriptResponse struct {
	Call       *Call   `json:"call,omitempty"`
	Transcript []Entry `json:"transcript"`
}

func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	if callID == "" {
		http.Error(w, "call id required", http.StatusBadRequest)
		return
	}
	call, err := h.store.Get(r.Context(), callID)
	if err != nil {
		h.logger.Error("failed to load call", "error", err, "call_id", callID)
		http.Error(w, "failed to load call", http.StatusInternalServerError)
		return
	}
	entries, err := h.store.Transcript(r.Context(), callID)
	if err != nil {
		h.logger.Error("failed to load transcript", "error", err, "call_id", callID)
		http.Error(w, "failed to load transcript", http.StatusInternalServerError)
		return
	}
	if call == nil && len(entries) == 0 {
		http.Error(w, "call not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transcriptResponse{Call: call, Transcript: entries})
}
