package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"seniorkiosk/internal/kiosk"
)

// Event types pushed to the kiosk front end
const (
	TypeSpeech = "speech"
	TypeState  = "state"
)

const (
	sendBuffer     = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // kiosk front end is served from the device itself
	},
}

// Event is one message on the /ws stream
type Event struct {
	Type           string          `json:"type"`
	Text           string          `json:"text,omitempty"`
	Lang           string          `json:"lang,omitempty"`
	Rate           float64         `json:"rate,omitempty"`
	CancelPrevious bool            `json:"cancel_previous,omitempty"`
	State          *kiosk.Snapshot `json:"state,omitempty"`
	Time           time.Time       `json:"time"`
}

// Options control speech parameters sent with every speech event
type Options struct {
	SpeechLang string
	SpeechRate float64
}

// Hub fans session output out to connected displays. It implements
// kiosk.Speaker and kiosk.Display; neither call blocks.
//
// Speech is queued in order and never dropped by the hub; a display too slow
// to take a speech event is disconnected and gets the latest state replayed
// when it reconnects. State frames are coalesced: only the newest is sent.
type Hub struct {
	opts   Options
	logger *zap.Logger

	register    chan *client
	unregister  chan *client
	speechReady chan struct{}
	stateReady  chan struct{}
	done        chan struct{}

	speechMu sync.Mutex
	speech   [][]byte

	mu        sync.RWMutex
	clients   map[*client]bool
	lastState []byte
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub; call Run to start delivering events
func NewHub(opts Options, logger *zap.Logger) *Hub {
	if opts.SpeechLang == "" {
		opts.SpeechLang = "ko-KR"
	}
	if opts.SpeechRate <= 0 {
		opts.SpeechRate = 0.9
	}
	return &Hub{
		opts:        opts,
		logger:      logger.Named("events"),
		register:    make(chan *client),
		unregister:  make(chan *client),
		speechReady: make(chan struct{}, 1),
		stateReady:  make(chan struct{}, 1),
		done:        make(chan struct{}),
		clients:     make(map[*client]bool),
	}
}

// Run delivers events until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.lastState
			h.mu.Unlock()
			if last != nil {
				c.send <- last
			}
			h.logger.Info("Display connected", zap.String("client_id", c.id))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Info("Display disconnected", zap.String("client_id", c.id))
			}
			h.mu.Unlock()
		case <-h.speechReady:
			h.speechMu.Lock()
			pending := h.speech
			h.speech = nil
			h.speechMu.Unlock()
			for _, msg := range pending {
				h.deliver(msg, true)
			}
		case <-h.stateReady:
			h.mu.RLock()
			last := h.lastState
			h.mu.RUnlock()
			h.deliver(last, false)
		}
	}
}

// deliver sends msg to every display. A display whose buffer is full loses a
// state frame, but is disconnected rather than lose a speech event.
func (h *Hub) deliver(msg []byte, speech bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			if !speech {
				h.logger.Warn("Display buffer full, skipping state", zap.String("client_id", c.id))
				continue
			}
			h.logger.Warn("Display too slow for speech, disconnecting", zap.String("client_id", c.id))
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ClientCount returns the number of connected displays
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Speak pushes a speech event that interrupts any utterance still playing
func (h *Hub) Speak(text string) {
	data, ok := h.encode(Event{
		Type:           TypeSpeech,
		Text:           text,
		Lang:           h.opts.SpeechLang,
		Rate:           h.opts.SpeechRate,
		CancelPrevious: true,
		Time:           time.Now(),
	})
	if !ok {
		return
	}

	h.speechMu.Lock()
	h.speech = append(h.speech, data)
	h.speechMu.Unlock()
	notify(h.speechReady)
}

// Show pushes the latest session state
func (h *Hub) Show(snap kiosk.Snapshot) {
	data, ok := h.encode(Event{Type: TypeState, State: &snap, Time: time.Now()})
	if !ok {
		return
	}

	h.mu.Lock()
	h.lastState = data
	h.mu.Unlock()
	notify(h.stateReady)
}

func (h *Hub) encode(ev Event) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return nil, false
	}
	return data, true
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// ServeWS upgrades the request and attaches a display
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}

// readPump only services control frames; displays do not send commands here
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
