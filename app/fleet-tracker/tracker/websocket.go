package tracker

import (
	logger "log"
	"net/http"
	"time"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/Biswayan2006/SIH2025-sub001/business/fleet"
	"github.com/gorilla/websocket"
)

const (
	snapshotMessageType     = "FleetSnapshot"
	stateChangedMessageType = "VehicleStateChanged"
)

//WebSocketConf contains the timing parameters of the live websocket channel
type WebSocketConf struct {
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
}

//liveMessage is the frame sent to websocket observers
type liveMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

//webSocketHandler streams accepted vehicle state changes to websocket observers
type webSocketHandler struct {
	log      *logger.Logger
	store    *fleet.Store
	hub      *fleet.Hub
	conf     WebSocketConf
	upgrader websocket.Upgrader
}

//makeWebSocketHandler webSocketHandler factory
func makeWebSocketHandler(log *logger.Logger, store *fleet.Store, hub *fleet.Hub,
	conf WebSocketConf) *webSocketHandler {
	return &webSocketHandler{
		log:   log,
		store: store,
		hub:   hub,
		conf:  conf,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: conf.WriteWait,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

//ServeHTTP implements webSocketHandler's http.Handler interface. The observer is subscribed before the
//fleet snapshot is taken so no accepted change falls between the two
func (h *webSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("ws upgrade error: %v", err)
		return
	}
	sub := h.hub.Subscribe()
	h.log.Printf("observer %d connected from %s, %d observers", sub.Id(), r.RemoteAddr, h.hub.SubscriberCount())

	closed := make(chan bool)
	go h.readPump(conn, closed)
	h.writePump(conn, sub, closed)

	h.hub.Unsubscribe(sub)
	_ = conn.Close()
	h.log.Printf("observer %d disconnected, missed %d deltas", sub.Id(), sub.Dropped())
}

//readPump discards observer messages, keeps the read deadline moving on pongs and reports when the observer goes away
func (h *webSocketHandler) readPump(conn *websocket.Conn, closed chan bool) {
	defer close(closed)
	_ = conn.SetReadDeadline(time.Now().Add(h.conf.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.conf.PongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

//writePump sends the fleet snapshot followed by every delta on sub until the observer or the subscription closes
func (h *webSocketHandler) writePump(conn *websocket.Conn, sub *fleet.Subscription, closed chan bool) {
	ticker := time.NewTicker(h.conf.PingInterval)
	defer ticker.Stop()

	if err := h.write(conn, liveMessage{Type: snapshotMessageType, Data: h.store.List(fleet.Filter{})}); err != nil {
		h.log.Printf("error writing snapshot to observer %d: %v", sub.Id(), err)
		return
	}
	for {
		select {
		case delta, ok := <-sub.Deltas():
			if !ok {
				return
			}
			if err := h.write(conn, makeStateChangedMessage(delta)); err != nil {
				h.log.Printf("error writing to observer %d: %v", sub.Id(), err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.conf.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *webSocketHandler) write(conn *websocket.Conn, message liveMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(h.conf.WriteWait))
	return conn.WriteJSON(message)
}

func makeStateChangedMessage(delta bus.VehicleStateChanged) liveMessage {
	return liveMessage{Type: stateChangedMessageType, Data: delta}
}
