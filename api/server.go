package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/game/service"
	"github.com/wricardo/checkers-game/transport/websocket"
	"go.uber.org/zap"
)

// Broadcaster pushes game updates to live subscribers
type Broadcaster interface {
	Broadcast(gameID, event string, data interface{})
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     Broadcaster
	ws      *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil, in which case no
// websocket endpoint is mounted and updates are not broadcast.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		ws:      hub,
		router:  mux.NewRouter(),
		logger:  logger.Named("api"),
	}
	if hub != nil {
		s.hub = hub
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Games
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleDeleteGame).Methods("DELETE")
	api.HandleFunc("/games/{id}/join", s.handleJoinGame).Methods("POST")

	// Play. PUT on the game resource is kept for older clients.
	api.HandleFunc("/games/{id}", s.handleMove).Methods("PUT")
	api.HandleFunc("/games/{id}/moves", s.handleMove).Methods("POST")
	api.HandleFunc("/games/{id}/moves", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/games/{id}/legal-moves", s.handleLegalMoves).Methods("GET")

	// Players
	api.HandleFunc("/stats/{playerId}", s.handleGetStats).Methods("GET")

	// Setups
	api.HandleFunc("/setups", s.handleListSetups).Methods("GET")
	api.HandleFunc("/setups/{name}", s.handleGetSetup).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	if s.ws != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// ServeHTTP adds CORS headers to every response and answers preflight
// requests before routing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Player-Id")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorBody is the JSON shape of every error response. All values are
// strings so clients can decode it into a map[string]string.
type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: message, Code: code})
}

// respondServiceError maps a service or engine error onto a status code
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	body := errorBody{Error: err.Error(), Code: code}

	var moveErr *engine.MoveError
	if errors.As(err, &moveErr) {
		body.Reason = string(moveErr.Reason)
		body.Field = moveErr.Field
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
	respondJSON(w, status, body)
}

// statusFor returns the HTTP status and machine-readable code for err
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMalformedRequest):
		return http.StatusBadRequest, "malformed_request"
	case errors.Is(err, engine.ErrOutOfBounds):
		return http.StatusBadRequest, "out_of_bounds"
	case errors.Is(err, config.ErrInvalidSetup):
		return http.StatusBadRequest, "invalid_setup"
	case errors.Is(err, engine.ErrIllegalMove):
		return http.StatusUnprocessableEntity, "illegal_move"
	case errors.Is(err, engine.ErrNotYourTurn):
		return http.StatusConflict, "not_your_turn"
	case errors.Is(err, engine.ErrGameFinished):
		return http.StatusConflict, "game_finished"
	case errors.Is(err, service.ErrVersionConflict):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, service.ErrSeatTaken):
		return http.StatusConflict, "seat_taken"
	case errors.Is(err, service.ErrWrongPlayer):
		return http.StatusForbidden, "wrong_player"
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, service.ErrSetupNotFound):
		return http.StatusNotFound, "setup_not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) broadcast(gameID, event string, data interface{}) {
	if s.hub != nil {
		s.hub.Broadcast(gameID, event, data)
	}
}

// decodeBody reads an optional JSON body. An empty body is not an error.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", service.ErrMalformedRequest, err)
	}
	return nil
}

// Game Handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID      string `json:"player_id"`
		PlayerIDCamel string `json:"playerId"`
		SetupID       string `json:"setup_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	playerID := req.PlayerID
	if playerID == "" {
		playerID = req.PlayerIDCamel
	}

	game, err := s.service.CreateGame(r.Context(), service.CreateGameRequest{
		PlayerID: playerID,
		SetupID:  req.SetupID,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.logger.Debug("game created", zap.String("game_id", game.ID), zap.String("remote", r.RemoteAddr))
	respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := service.ListOptions{
		Status: engine.Status(query.Get("status")),
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
	}

	switch opts.Status {
	case "", engine.StatusInProgress, engine.StatusFinished:
	default:
		respondError(w, http.StatusBadRequest, "malformed_request",
			fmt.Sprintf("status must be %q or %q", engine.StatusInProgress, engine.StatusFinished))
		return
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	games, err := s.service.ListGames(r.Context(), opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if opts.Sort == "" {
		opts.Sort = "accessed"
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
		"sort":  opts.Sort,
		"order": opts.Order,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	game, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := s.service.DeleteGame(r.Context(), gameID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(gameID, websocket.EventGameDeleted, nil)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Game %s deleted", gameID),
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req struct {
		PlayerID      string `json:"player_id"`
		PlayerIDCamel string `json:"playerId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	playerID := req.PlayerID
	if playerID == "" {
		playerID = req.PlayerIDCamel
	}

	game, err := s.service.JoinGame(r.Context(), gameID, playerID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(gameID, websocket.EventPlayerJoin, game)
	respondJSON(w, http.StatusOK, game)
}

// movePayload accepts both snake_case and the camelCase field names used by
// the browser client.
type movePayload struct {
	FromRow *int `json:"from_row"`
	FromCol *int `json:"from_col"`
	ToRow   *int `json:"to_row"`
	ToCol   *int `json:"to_col"`

	FromRowCamel *int `json:"fromRow"`
	FromColCamel *int `json:"fromCol"`
	ToRowCamel   *int `json:"toRow"`
	ToColCamel   *int `json:"toCol"`

	Player        engine.Color `json:"player"`
	PlayerID      string       `json:"player_id"`
	PlayerIDCamel string       `json:"playerId"`
}

func firstSet(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (p movePayload) request() service.MoveRequest {
	req := service.MoveRequest{
		FromRow:  firstSet(p.FromRow, p.FromRowCamel),
		FromCol:  firstSet(p.FromCol, p.FromColCamel),
		ToRow:    firstSet(p.ToRow, p.ToRowCamel),
		ToCol:    firstSet(p.ToCol, p.ToColCamel),
		Player:   engine.Color(strings.ToLower(string(p.Player))),
		PlayerID: p.PlayerID,
	}
	if req.PlayerID == "" {
		req.PlayerID = p.PlayerIDCamel
	}
	return req
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var payload movePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "malformed_request", "Invalid request body")
		return
	}

	req := payload.request()
	if req.PlayerID == "" {
		req.PlayerID = r.Header.Get("X-Player-Id")
	}

	result, err := s.service.SubmitMove(r.Context(), gameID, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.broadcast(gameID, websocket.EventGameUpdate, result.Game)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), gameID, opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	moves, err := s.service.LegalMoves(r.Context(), gameID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, moves)
}

// Player Handlers

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	stats, err := s.service.GetStats(r.Context(), playerID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Setup Handlers

func (s *Server) handleListSetups(w http.ResponseWriter, r *http.Request) {
	setups, err := s.service.ListSetups(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, setups)
}

func (s *Server) handleGetSetup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	setup, err := s.service.LoadSetup(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, setup)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		gameID = r.URL.Query().Get("gameId")
	}
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "malformed_request", "game parameter required")
		return
	}

	if _, err := s.service.GetGame(r.Context(), gameID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.ws.ServeWS(w, r, gameID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
