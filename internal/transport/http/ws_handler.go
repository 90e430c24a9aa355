package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"excel-interview-service/internal/app"
	"excel-interview-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler serves the interactive interview over a websocket. The client
// sends start/submit actions; the server answers each with the stage to
// render. One candidate per connection, strictly request/response, so all
// writes happen from the read loop.
type WSHandler struct {
	service  *app.InterviewService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.InterviewService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	Formula    string       `json:"formula"`
	EditedData domain.Table `json:"edited_data"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// ServeWS upgrades the connection and drives the session lifecycle from
// client messages. A missing session_id gets a fresh one minted server-side;
// the client learns it from the first stage frame.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	state, found, err := h.service.Resume(ctx, sessionID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	if found {
		h.writeStage(conn, buildStageView(state))
	} else {
		h.writeStage(conn, startStageView(sessionID))
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "start":
			h.handleStart(ctx, conn, sessionID)
		case "submit":
			h.handleSubmit(ctx, conn, sessionID, inbound.Payload)
		default:
			h.writeError(conn, errors.New("unknown message type: "+inbound.Type))
		}
	}
}

func (h *WSHandler) handleStart(ctx context.Context, conn *websocket.Conn, sessionID string) {
	state, err := h.service.Start(ctx, sessionID)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	h.writeStage(conn, buildStageView(state))
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, sessionID string, raw json.RawMessage) {
	var payload submitPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.writeError(conn, errors.New("invalid submit payload"))
		return
	}

	state, err := h.service.Submit(ctx, sessionID, payload.Formula, payload.EditedData)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Expired mid-interview: back to the start screen, not an error.
		h.writeStage(conn, startStageView(sessionID))
		return
	}
	if err != nil {
		h.writeError(conn, err)
		return
	}
	h.writeStage(conn, buildStageView(state))
}

func (h *WSHandler) writeStage(conn *websocket.Conn, view stageView) {
	if err := conn.WriteJSON(outboundMessage{Type: "stage", Payload: view}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	payload := errorPayload{Message: err.Error()}
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		payload = errorPayload{Message: "session store unreachable, please try again", Retry: true}
	case errors.Is(err, domain.ErrCatalogInvalid):
		payload = errorPayload{Message: "interview questions could not be loaded, please try again later", Retry: true}
	}
	if werr := conn.WriteJSON(outboundMessage{Type: "error", Payload: payload}); werr != nil {
		log.Printf("ws write error: %v", werr)
	}
}
