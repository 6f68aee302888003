package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/api"
	"github.com/brensch/snekgreedy/store"
)

const version = "1.0.0"

// Server answers decision requests. The engine is stateless, so requests are
// handled concurrently without coordination.
type Server struct {
	engine   *alloc.Engine
	recorder *store.Recorder
	logger   *log.Logger
	wsIdle   time.Duration
	upgrader websocket.Upgrader

	decisions atomic.Int64
}

// NewServer builds a server. recorder may be nil to disable archiving.
func NewServer(engine *alloc.Engine, recorder *store.Recorder, logger *log.Logger, wsIdle time.Duration) *Server {
	return &Server{
		engine:   engine,
		recorder: recorder,
		logger:   logger,
		wsIdle:   wsIdle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.handleIndex)
	r.POST("/decide", s.handleDecide)
	r.GET("/ws", s.handleWS)
	return r
}

func (s *Server) handleIndex(c *gin.Context) {
	cfg := s.engine.Config()
	c.JSON(http.StatusOK, api.InfoResponse{
		APIVersion: "1",
		Author:     "snekgreedy",
		Version:    version,
		MaxRounds:  cfg.MaxRounds,
		MaxDepth:   cfg.MaxDepth,
		LastResort: cfg.LastResort.Name(),
	})
}

func (s *Server) handleDecide(c *gin.Context) {
	var req api.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := s.decide(&req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, api.ErrBadRequest) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleWS serves one decision per text message until the client closes the
// connection or stays idle for wsIdle.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", c.ClientIP(), "err", err)
		return
	}
	defer conn.Close()

	remote := c.ClientIP()
	s.logger.Debug("websocket session opened", "remote", remote)
	for {
		if s.wsIdle > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.wsIdle))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", "remote", remote, "err", err)
			}
			return
		}

		var reply any
		var req api.DecideRequest
		if err := json.Unmarshal(message, &req); err != nil {
			reply = gin.H{"error": err.Error()}
		} else if resp, err := s.decide(&req); err != nil {
			reply = gin.H{"error": err.Error()}
		} else {
			reply = resp
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("websocket write failed", "remote", remote, "err", err)
			return
		}
	}
}

func (s *Server) decide(req *api.DecideRequest) (api.DecideResponse, error) {
	start := time.Now()
	snap, err := req.ToSnapshot()
	if err != nil {
		return api.DecideResponse{}, err
	}

	d := s.engine.Trace(snap)
	elapsed := time.Since(start)
	n := s.decisions.Add(1)

	if s.recorder != nil {
		if err := s.recorder.Record(store.RowFromDecision(uuid.NewString(), snap, d, elapsed)); err != nil {
			s.logger.Warn("archive record failed", "err", err)
		}
	}
	s.logger.Debug("decision",
		"n", n,
		"move", d.Move,
		"outcome", d.Outcome,
		"rounds", len(d.Rounds),
		"remaining_rounds", snap.RemainingRounds,
		"elapsed", elapsed,
	)
	return api.NewDecideResponse(d), nil
}

func (s *Server) Decisions() int64 { return s.decisions.Load() }
