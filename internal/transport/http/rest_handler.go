package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"excel-interview-service/internal/app"
	"excel-interview-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RESTHandler exposes the interview over plain HTTP for clients that do not
// hold a websocket open.
type RESTHandler struct {
	service *app.InterviewService
}

func NewRESTHandler(service *app.InterviewService) *RESTHandler {
	return &RESTHandler{service: service}
}

func (h *RESTHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", h.createSession)
	r.Get("/sessions/{sessionID}", h.getSession)
	r.Post("/sessions/{sessionID}/start", h.startSession)
	r.Post("/sessions/{sessionID}/submit", h.submit)
	r.Get("/sessions/{sessionID}/report", h.getReport)
	return r
}

// createSession mints a fresh opaque session identifier. Nothing is stored
// until the candidate starts.
func (h *RESTHandler) createSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": uuid.NewString()})
}

func (h *RESTHandler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, found, err := h.service.Resume(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, startStageView(sessionID))
		return
	}
	writeJSON(w, http.StatusOK, buildStageView(state))
}

func (h *RESTHandler) startSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, err := h.service.Start(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildStageView(state))
}

func (h *RESTHandler) submit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid submit payload", http.StatusBadRequest)
		return
	}

	state, err := h.service.Submit(r.Context(), sessionID, payload.Formula, payload.EditedData)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Expired mid-interview reads as never started.
		writeJSON(w, http.StatusOK, startStageView(sessionID))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildStageView(state))
}

func (h *RESTHandler) getReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, found, err := h.service.Resume(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if !state.InterviewFinished {
		http.Error(w, "interview not finished", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, reportView{
		FinalScore:      state.FinalScore(),
		FeedbackSummary: state.FeedbackSummary(),
		Evaluations:     state.Evaluations,
		StartTime:       state.StartTime,
		EndTime:         state.EndTime,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, "session store unreachable, please try again", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrCatalogInvalid):
		http.Error(w, "interview questions could not be loaded", http.StatusInternalServerError)
	case errors.Is(err, domain.ErrSessionNotStarted), errors.Is(err, domain.ErrSessionFinished):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
