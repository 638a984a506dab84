package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lazharichir/bluff/game"
	"github.com/lazharichir/bluff/server/connection"
	"github.com/lazharichir/bluff/server/handlers"
	"go.uber.org/zap"
)

const (
	// HumanHeader carries the caller's identity on every API request
	HumanHeader = "X-Human-UUID"
	// humanQuery is the websocket fallback, browsers cannot set headers there
	humanQuery = "human"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the web client's origin once it has a fixed host
	},
}

// Server exposes games over HTTP and pushes updates over websockets
type Server struct {
	creator    *game.ActionCreator
	connMgr    *connection.Manager
	cmdRouter  *handlers.CommandRouter
	dispatcher *Dispatcher
	logger     *zap.Logger
}

type ctxKey int

const humanKey ctxKey = iota

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+HumanHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewServer creates a new game server
func NewServer(creator *game.ActionCreator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	connMgr := connection.NewManager()

	return &Server{
		creator:    creator,
		connMgr:    connMgr,
		cmdRouter:  handlers.NewCommandRouter(creator),
		dispatcher: NewDispatcher(connMgr, creator, logger),
		logger:     logger,
	}
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/games/{gameID}", func(r chi.Router) {
		r.Use(identify)
		r.Get("/", s.handleGetGame)
		r.Post("/players", s.handleCommand(game.BuyInCommand{}.CommandName()))
		r.Post("/start", s.handleCommand(game.StartCommand{}.CommandName()))
		r.Post("/bets", s.handleCommand(game.BetCommand{}.CommandName()))
		r.Post("/checks", s.handleCommand(game.CheckCommand{}.CommandName()))
		r.Post("/folds", s.handleCommand(game.FoldCommand{}.CommandName()))
		r.Get("/ws", s.handleWebSocket)
	})
	return r
}

// Start serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.connMgr.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 15 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()
	s.logger.Info("starting server", zap.String("addr", addr))

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// identify resolves the caller from the X-Human-UUID header, or the human
// query parameter for websockets
func identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HumanHeader)
		if raw == "" {
			raw = r.URL.Query().Get(humanQuery)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown human")
			return
		}
		ctx := context.WithValue(r.Context(), humanKey, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func humanFrom(ctx context.Context) string {
	id, _ := ctx.Value(humanKey).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// handleGetGame returns the game as the caller sees it
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	payload, err := s.payload(r.Context(), gameID, humanFrom(r.Context()))
	if err != nil {
		s.internalError(w, "failed to load game", gameID, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleCommand proposes the named command for the caller and pushes the
// new state to every watcher when it is accepted
func (s *Server) handleCommand(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		gameID := chi.URLParam(r, "gameID")
		humanID := humanFrom(ctx)

		msg := handlers.Message{Name: name}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&msg); err != nil && !errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			msg.Name = name
		}

		err := s.cmdRouter.Route(ctx, gameID, humanID, msg)
		var rejected *game.RejectedError
		switch {
		case errors.As(err, &rejected):
			writeError(w, http.StatusUnprocessableEntity, rejected.Reason)
			return
		case errors.Is(err, handlers.ErrUnknownCommand):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			s.internalError(w, "command failed", gameID, err)
			return
		}

		s.dispatcher.GameUpdated(ctx, gameID)

		payload, err := s.payload(ctx, gameID, humanID)
		if err != nil {
			s.internalError(w, "failed to load game", gameID, err)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
	}
}

func (s *Server) payload(ctx context.Context, gameID, humanID string) (GamePayload, error) {
	actions, err := s.creator.Actions(ctx, gameID)
	if err != nil {
		return GamePayload{}, err
	}
	state, err := game.Project(actions)
	if err != nil {
		return GamePayload{}, err
	}
	return BuildPayload(gameID, humanID, state, actions, s.creator.Rules()), nil
}

func (s *Server) internalError(w http.ResponseWriter, msg, gameID string, err error) {
	s.logger.Error(msg, zap.String("game_id", gameID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// handleWebSocket streams the caller's view of a game and accepts commands
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}

	client := connection.NewClient(uuid.NewString(), humanFrom(r.Context()), chi.URLParam(r, "gameID"), conn)
	s.logger.Info("client connected",
		zap.String("client_id", client.ID),
		zap.String("game_id", client.GameID),
		zap.String("human_id", client.HumanID),
		zap.String("remote_addr", r.RemoteAddr),
	)

	s.dispatcher.Snapshot(r.Context(), client)
	if !s.connMgr.Join(client) {
		conn.Close()
		return
	}

	go s.writePump(client)
	s.readPump(r.Context(), client)
}

// readPump reads commands from the WebSocket connection
func (s *Server) readPump(ctx context.Context, client *connection.Client) {
	defer func() {
		s.connMgr.Leave(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket closed", zap.String("client_id", client.ID), zap.Error(err))
			}
			return
		}

		err = s.cmdRouter.HandleCommand(ctx, client.GameID, client.HumanID, message)
		if err != nil {
			s.replyError(client, err)
			continue
		}
		s.dispatcher.GameUpdated(ctx, client.GameID)
	}
}

func (s *Server) replyError(client *connection.Client, err error) {
	reason := "internal error"
	var rejected *game.RejectedError
	switch {
	case errors.As(err, &rejected):
		reason = rejected.Reason
	case errors.Is(err, handlers.ErrUnknownCommand), errors.Is(err, handlers.ErrMalformedCommand):
		reason = err.Error()
	default:
		s.logger.Error("command failed", zap.String("game_id", client.GameID), zap.Error(err))
	}

	envelope, encodeErr := encodeEnvelope("command-rejected", map[string]string{"error": reason})
	if encodeErr != nil {
		return
	}
	s.connMgr.SendToClient(client.ID, envelope)
}

// writePump sends queued messages and keeps the connection alive with pings
func (s *Server) writePump(client *connection.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Debug("failed to write message", zap.String("client_id", client.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
