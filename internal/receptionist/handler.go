package receptionist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// ConversationRequest is the body of POST /api/receptionist/conversation.
type ConversationRequest struct {
	Messages          []generation.Message `json:"messages"`
	CallerPhoneNumber string               `json:"callerPhoneNumber,omitempty"`
	CallID            string               `json:"callId,omitempty"`
}

type conversationResponse struct {
	Success bool `json:"success"`
	TurnResult
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type statsResponse struct {
	Success bool  `json:"success"`
	Data    Stats `json:"data"`
}

// Handler exposes the receptionist over JSON.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Conversation handles POST /api/receptionist/conversation.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	var req ConversationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.logger.Warn("failed to decode conversation request", "error", err)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "messages are required"})
		return
	}
	for i := range req.Messages {
		req.Messages[i].Role = strings.ToLower(strings.TrimSpace(req.Messages[i].Role))
		if req.Messages[i].Role != generation.RoleUser && req.Messages[i].Role != generation.RoleAssistant {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message role must be user or assistant"})
			return
		}
	}

	result, err := h.service.HandleCall(r.Context(), TurnRequest{
		History:     req.Messages,
		CallerPhone: strings.TrimSpace(req.CallerPhoneNumber),
		CallID:      strings.TrimSpace(req.CallID),
	})
	if err != nil {
		h.logger.Error("failed to process conversation", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process conversation"})
		return
	}
	h.writeJSON(w, http.StatusOK, conversationResponse{Success: true, TurnResult: result})
}

// Stats handles GET /api/receptionist/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, statsResponse{Success: true, Data: h.service.Stats(r.Context())})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
