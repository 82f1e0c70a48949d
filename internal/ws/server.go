package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type refreshMessage struct {
	Type        string    `json:"type"`
	OrderCount  int       `json:"orderCount"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Server pushes snapshot-refresh notifications to connected consoles so an
// open report view knows its pivot is stale.
type Server struct {
	logger    *zap.Logger
	heartbeat time.Duration
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan refreshMessage
}

func New(logger *zap.Logger, heartbeat time.Duration) *Server {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Server{
		logger:    logger,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan refreshMessage),
	}
}

func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	send := make(chan refreshMessage, 8)
	s.mu.Lock()
	s.clients[conn] = send
	s.mu.Unlock()

	go s.writeLoop(conn, send)
	go s.readLoop(conn)
}

// SnapshotRefreshed satisfies snapshot.Notifier; slow clients are skipped
// rather than blocking the refresh path.
func (s *Server) SnapshotRefreshed(count int, at time.Time) {
	msg := refreshMessage{Type: "snapshot_refreshed", OrderCount: count, RefreshedAt: at}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, send := range s.clients {
		select {
		case send <- msg:
		default:
			s.logger.Warn("ws client lagging, dropping refresh notice",
				zap.String("remote", conn.RemoteAddr().String()))
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, send chan refreshMessage) {
	ticker := time.NewTicker(s.heartbeat)
	defer func() {
		ticker.Stop()
		s.drop(conn)
	}()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop only services control frames; the console never sends data.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.drop(conn)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(3 * s.heartbeat))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(3 * s.heartbeat))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	if send, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(send)
	}
	s.mu.Unlock()
	_ = conn.Close()
}
