package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
)

// Snapshotter returns the current state of every sensor.
type Snapshotter interface {
	Current(ctx context.Context) ([]models.LiveUpdate, error)
}

// Server upgrades HTTP connections to WebSockets for live viewers.
type Server struct {
	manager      *Manager
	snapshot     Snapshotter
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server. snapshot may be nil.
func NewServer(manager *Manager, snapshot Snapshotter, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		manager:      manager,
		snapshot:     snapshot,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is HTTP handler for /ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := s.manager.NewID()
	connection := NewConnection(id, conn, s.manager.PingInterval(), s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		cancel()
		s.logger.Info("viewer disconnected", zap.String("viewer_id", id))
	})
	s.sendSnapshot(r.Context(), connection)
	s.manager.Add(connection)

	go connection.Start(ctx)
	s.logger.Info("viewer connected", zap.String("viewer_id", id), zap.Int("viewers", s.manager.Count()))
}

func (s *Server) sendSnapshot(ctx context.Context, conn *Connection) {
	if s.snapshot == nil {
		return
	}
	updates, err := s.snapshot.Current(ctx)
	if err != nil {
		s.logger.Warn("failed to load live snapshot", zap.Error(err))
		return
	}
	for _, update := range updates {
		data, err := json.Marshal(update)
		if err != nil {
			continue
		}
		conn.Send(data)
	}
}
