package telemetry

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// sendQueue is how many encoded frames may wait per client before new ones
// are dropped.
const sendQueue = 8

// HubConfig tunes a Hub.
type HubConfig struct {
	MaxFPS float64 // per-client frame rate cap; <= 0 means unlimited
	Burst  int

	// Players bounds the ids a client may claim with ?player=N. Zero
	// accepts any non-negative id.
	Players int

	// OnInput receives input events sent by clients. Nil ignores them.
	OnInput func(sim.InputEvent) error
}

// Stats counts what the hub did with broadcast frames.
type Stats struct {
	Frames    uint64 // frames encoded
	Sent      uint64 // per-client frames queued
	Throttled uint64 // skipped by the rate limiter
	Dropped   uint64 // skipped because the client's queue was full
	Inputs    uint64 // input events accepted from clients
	Rejected  uint64 // input from spectators or for another player
}

// client is one websocket viewer.
type client struct {
	id      string
	player  sim.FactionID // -1 for spectators
	ws      *websocket.Conn
	limiter *rate.Limiter
	send    chan []byte
	once    sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		c.ws.Close()
	})
}

// Hub fans snapshots out to websocket clients. Broadcast never blocks on a
// slow client: frames beyond its rate or queue are skipped.
type Hub struct {
	cfg      HubConfig
	match    string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client

	seq       atomic.Uint64
	sent      atomic.Uint64
	throttled atomic.Uint64
	dropped   atomic.Uint64
	inputs    atomic.Uint64
	rejected  atomic.Uint64
}

// NewHub creates a hub for one match. Every frame carries a fresh match id
// so viewers can tell restarts apart.
func NewHub(cfg HubConfig) *Hub {
	return &Hub{
		cfg:   cfg,
		match: uuid.New().String(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[string]*client),
	}
}

// MatchID returns the id stamped on every frame.
func (h *Hub) MatchID() string { return h.match }

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the running counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Frames:    h.seq.Load(),
		Sent:      h.sent.Load(),
		Throttled: h.throttled.Load(),
		Dropped:   h.dropped.Load(),
		Inputs:    h.inputs.Load(),
		Rejected:  h.rejected.Load(),
	}
}

func (h *Hub) newLimiter() *rate.Limiter {
	if h.cfg.MaxFPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := h.cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(h.cfg.MaxFPS), burst)
}

// parsePlayer reads the ?player= query value. An empty value makes the
// connection a spectator.
func (h *Hub) parsePlayer(raw string) (sim.FactionID, error) {
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("player %q: %w", raw, err)
	}
	if n < 0 || (h.cfg.Players > 0 && n >= h.cfg.Players) {
		return 0, fmt.Errorf("player %d out of range", n)
	}
	return sim.FactionID(n), nil
}

// ServeWS upgrades the request and registers the connection until it closes.
// A connection opened with ?player=N may only send input for player N;
// without it the client only watches.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	player, err := h.parsePlayer(r.URL.Query().Get("player"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry: upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	c := &client{
		id:      uuid.New().String(),
		player:  player,
		ws:      ws,
		limiter: h.newLimiter(),
		send:    make(chan []byte, sendQueue),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
}

// readLoop forwards client input until the connection drops.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("telemetry: read from %s: %v", c.id, err)
			}
			return
		}
		if h.cfg.OnInput == nil {
			continue
		}
		ev, err := DecodeInput(raw)
		if err != nil {
			log.Printf("telemetry: bad input from %s: %v", c.id, err)
			continue
		}
		if c.player < 0 || ev.Player != c.player {
			h.rejected.Add(1)
			log.Printf("telemetry: %s input for player %d from %s (bound to %d) ignored", ev.Kind, ev.Player, c.id, c.player)
			continue
		}
		if err := h.cfg.OnInput(ev); err != nil {
			log.Printf("telemetry: input from %s rejected: %v", c.id, err)
			continue
		}
		h.inputs.Add(1)
	}
}

// Broadcast encodes snap once and queues it for every client whose limiter
// allows it.
func (h *Hub) Broadcast(snap *sim.Snapshot) error {
	data, err := Encode(&Frame{Match: h.match, Seq: h.seq.Add(1), Snapshot: snap})
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.limiter.Allow() {
			h.throttled.Add(1)
			continue
		}
		select {
		case c.send <- data:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}
