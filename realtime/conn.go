package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/core/token"
)

// Update types published on a live channel.
const (
	UpdateSlide = "slide" // move to a slide within the current item
	UpdateItem  = "item"  // move to another setlist item
	UpdateEnd   = "end"   // presentation finished
)

// Update is one presentation state change.
type Update struct {
	Type      string    `json:"type"`
	ServiceID string    `json:"serviceId"`
	ItemID    string    `json:"itemId,omitempty"`
	Slide     int       `json:"slide,omitempty"`
	SenderID  string    `json:"senderId"`
	SentAt    time.Time `json:"sentAt"`
}

// Conn is an open live channel for one service. Publish is safe for
// concurrent use; Updates delivers incoming changes until the peer or
// Close ends the connection.
type Conn struct {
	ws       *websocket.Conn
	clientID string
	service  string
	updates  chan Update
	closed   atomic.Bool
	writeMu  sync.Mutex
	log      *slog.Logger
}

type dialConfig struct {
	dialer   *websocket.Dialer
	clientID string
	buffer   int
	log      *slog.Logger
}

// Option configures dialing.
type Option func(*dialConfig)

// WithDialer overrides the WebSocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *dialConfig) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

// WithClientID sets the sender ID attached to published updates. Default is
// a fresh UUID per connection.
func WithClientID(id string) Option {
	return func(c *dialConfig) {
		if id != "" {
			c.clientID = id
		}
	}
}

// WithBuffer sets the incoming update buffer size. Default 16.
func WithBuffer(size int) Option {
	return func(c *dialConfig) {
		if size > 0 {
			c.buffer = size
		}
	}
}

// WithLogger sets the structured logger. Default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(c *dialConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Dial opens the live channel for serviceID at the backend base URL. The
// stored session token is attached as a bearer credential; without one the
// dial fails before any network I/O.
func Dial(ctx context.Context, baseURL, serviceID string, source token.Source, opts ...Option) (*Conn, error) {
	if serviceID == "" {
		return nil, ErrEmptyServiceID
	}

	raw, err := source.Read(ctx)
	if err != nil || raw == "" {
		return nil, ErrNoCredential
	}

	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("realtime: invalid base URL: %w", err)
	}
	switch target.Scheme {
	case "https":
		target.Scheme = "wss"
	default:
		target.Scheme = "ws"
	}
	target = target.JoinPath("services", serviceID, "live")

	cfg := &dialConfig{
		dialer:   websocket.DefaultDialer,
		clientID: uuid.NewString(),
		buffer:   16,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token.Normalize(raw))

	ws, resp, err := cfg.dialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("realtime: dial failed: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	conn := &Conn{
		ws:       ws,
		clientID: cfg.clientID,
		service:  serviceID,
		updates:  make(chan Update, cfg.buffer),
		log:      cfg.log,
	}
	go conn.readLoop()

	cfg.log.DebugContext(ctx, "live channel opened",
		logger.Component("realtime"),
		logger.ID("service_id", serviceID),
	)
	return conn, nil
}

// ClientID returns the sender ID attached to published updates.
func (c *Conn) ClientID() string {
	return c.clientID
}

// Updates delivers incoming presentation changes. The channel is closed when
// the connection ends.
func (c *Conn) Updates() <-chan Update {
	return c.updates
}

// Publish sends a state change on the channel, stamping the sender and time.
func (c *Conn) Publish(ctx context.Context, update Update) error {
	if c.closed.Load() {
		return ErrConnClosed
	}

	update.ServiceID = c.service
	update.SenderID = c.clientID
	update.SentAt = time.Now().UTC()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		c.ws.SetWriteDeadline(deadline)
		defer c.ws.SetWriteDeadline(time.Time{})
	}

	if err := c.ws.WriteJSON(update); err != nil {
		return fmt.Errorf("realtime: publish failed: %w", err)
	}
	return nil
}

// Close ends the connection. Safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.writeMu.Lock()
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return c.ws.Close()
}

// readLoop drains incoming updates until the connection ends, then closes
// the updates channel. Updates the buffer cannot hold are dropped rather than
// stalling the read side.
func (c *Conn) readLoop() {
	defer close(c.updates)

	for {
		var update Update
		if err := c.ws.ReadJSON(&update); err != nil {
			if !c.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("live channel read failed",
					logger.Component("realtime"),
					logger.ID("service_id", c.service),
					logger.Error(err),
				)
			}
			return
		}

		select {
		case c.updates <- update:
		default:
		}
	}
}
