package page

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/controller"
	"github.com/sp-meter/circles/internal/logger"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// event is the incoming WebSocket message format.
type event struct {
	Type  string `json:"type"` // "click", "confirm", "reset" or "dismiss"
	Label string `json:"label"`
	Value string `json:"value"`
}

// Outgoing WebSocket message formats.
type regionMessage struct {
	Type   string            `json:"type"` // "region"
	Region controller.Region `json:"region"`
	HTML   string            `json:"html"`
}

type tooltipMessage struct {
	Type  string `json:"type"` // "tooltip"
	Label string `json:"label"`
	Open  bool   `json:"open"`
}

type noticeMessage struct {
	Type    string `json:"type"` // "clear_inputs" or "error"
	Content string `json:"content,omitempty"`
}

// wsView forwards controller changes to the browser. Writes from the event
// loop and from request goroutines are serialized by mu.
type wsView struct {
	conn *websocket.Conn
	log  *zap.SugaredLogger
	mu   sync.Mutex
}

func (v *wsView) SetRegion(region controller.Region, html string) {
	v.write(regionMessage{Type: "region", Region: region, HTML: html})
}

func (v *wsView) SetTooltip(label string, open bool) {
	v.write(tooltipMessage{Type: "tooltip", Label: label, Open: open})
}

func (v *wsView) ClearInputs() {
	v.write(noticeMessage{Type: "clear_inputs"})
}

func (v *wsView) sendError(message string) {
	v.write(noticeMessage{Type: "error", Content: message})
}

func (v *wsView) write(msg any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := v.conn.WriteJSON(msg); err != nil {
		v.log.Debugw("websocket write failed", "error", err)
	}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Page(chi.URLParam(r, "page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	api, ok := h.apis[p.ID]
	if !ok {
		http.Error(w, "no backend configured for page "+p.ID, http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", logger.FieldPage, p.ID, "error", err)
		return
	}
	defer conn.Close()

	view := &wsView{conn: conn, log: h.log}
	ctrl := controller.New(p, api, view, controller.Options{
		Logger:   h.log,
		Recorder: h.recorder,
	})
	defer ctrl.Close()

	log := h.log.With(logger.FieldPage, p.ID, logger.FieldSession, ctrl.SessionID())
	log.Debug("page session opened")
	defer log.Debug("page session closed")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("websocket read failed", "error", err)
			}
			return
		}

		var ev event
		if err := json.Unmarshal(msg, &ev); err != nil {
			view.sendError("invalid message format")
			continue
		}

		if err := dispatch(ctrl, ev); err != nil {
			view.sendError(err.Error())
		}
	}
}

func dispatch(ctrl *controller.Controller, ev event) error {
	switch ev.Type {
	case "click":
		return ctrl.Click(ev.Label)
	case "confirm":
		return ctrl.Confirm(ev.Label, ev.Value)
	case "reset":
		return ctrl.Reset()
	case "dismiss":
		return ctrl.Dismiss()
	default:
		return errors.Newf("unknown message type: %s", ev.Type)
	}
}
