package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/checkers-game/game/config"
	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/game/service"
	"github.com/wricardo/checkers-game/game/stats"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL, version string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"Checkers",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Checkers - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Capture every opposing piece or leave your opponent without a legal move.
Red moves first from the bottom of the board (rows 5-7) toward row 0.

AVAILABLE TOOLS:
- create_game: Start a new game (you play red)
- join_game: Take the black seat in an existing game
- get_game: Board and status of a game
- list_games: List games, optionally only those in progress
- move: Move one piece one step or one jump
- legal_moves: Every move the side to move may play right now
- move_history: Past moves of a game
- player_stats: Wins and losses for a player
- list_setups: Available starting positions
- game_rules: Full rules and coordinate system

TIP: call legal_moves before moving. After a capture, the same piece must keep
jumping while it can, and legal_moves shows only those jumps.`),
	)

	c.registerTools()
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID",
	}
}

func coordinateProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     engine.Size - 1,
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Game lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new checkers game. The creator plays red.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID, used for stats (optional, defaults to anonymous)",
				},
				"setup_id": map[string]interface{}{
					"type":        "string",
					"description": "Starting position to use (optional, see list_setups)",
				},
			},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join an existing game as black",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID",
				},
			},
			Required: []string{"game_id", "player_id"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the board, players and status of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List games, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.StatusInProgress), string(engine.StatusFinished)},
					"description": "Only games with this status (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of games",
				},
			},
		},
	}, c.handleListGames)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move a piece from one square to another. A step moves one square diagonally, a jump moves two and captures the piece in between.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id":  gameIDProperty(),
				"from_row": coordinateProperty("Row of the piece to move (0 is the top, black's home row)"),
				"from_col": coordinateProperty("Column of the piece to move"),
				"to_row":   coordinateProperty("Destination row"),
				"to_col":   coordinateProperty("Destination column"),
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player ID (optional; selects your seat)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"game_id", "from_row", "from_col", "to_row", "to_col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List every legal move for the side to move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleMoveHistory)

	// Players and setups
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_stats",
		Description: "Get wins, losses and total games for a player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player ID",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handlePlayerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_setups",
		Description: "List available starting positions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSetups)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete checkers rules and the board coordinate system",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if code := errResp["code"]; code != "" {
				return fmt.Errorf("%s (%s)", msg, code)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument. Clients may also send numeric strings.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	playerID, _ := args["player_id"].(string)
	setupID, _ := args["setup_id"].(string)

	body := map[string]string{}
	if playerID != "" {
		body["player_id"] = playerID
	}
	if setupID != "" {
		body["setup_id"] = setupID
	}

	var game service.GameInfo
	if err := c.apiCall(ctx, "POST", "/api/games", body, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created game: %s\nSetup: %s\nYou play red.\n\n%s", game.ID, game.SetupID, formatGameInfo(&game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)

	var game service.GameInfo
	err := c.apiCall(ctx, "POST", "/api/games/"+url.PathEscape(gameID)+"/join", map[string]string{"player_id": playerID}, &game)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined game %s as black.\n\n%s", game.ID, formatGameInfo(&game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var game service.GameInfo
	if err := c.apiCall(ctx, "GET", "/api/games/"+url.PathEscape(gameID), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(&game)), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if status, _ := args["status"].(string); status != "" {
		query.Set("status", status)
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}

	path := "/api/games"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count int                `json:"count"`
		Games []service.GameInfo `json:"games"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		fmt.Fprintf(&result, "- %s (%s, %s to move, red %d / black %d, moves %d, updated %s)\n",
			g.ID, statusLine(&g.State), g.State.CurrentPlayer, g.RedPieces, g.BlackPieces, g.MoveCount,
			g.UpdatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)

	body := map[string]interface{}{}
	for _, key := range []string{"from_row", "from_col", "to_row", "to_col"} {
		if v, ok := intArg(args, key); ok {
			body[key] = v
		}
	}
	if playerID != "" {
		body["player_id"] = playerID
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", "/api/games/"+url.PathEscape(gameID)+"/moves", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var moves service.LegalMovesResponse
	if err := c.apiCall(ctx, "GET", "/api/games/"+url.PathEscape(gameID)+"/legal-moves", nil, &moves); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLegalMoves(&moves)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}

	path := "/api/games/" + url.PathEscape(gameID) + "/moves"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handlePlayerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playerID, _ := arguments(request)["player_id"].(string)

	var ps stats.PlayerStats
	if err := c.apiCall(ctx, "GET", "/api/stats/"+url.PathEscape(playerID), nil, &ps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Player: %s\nWins: %d\nLosses: %d\nTotal games: %d\n",
		ps.PlayerID, ps.Wins, ps.Losses, ps.TotalGames)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSetups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var setups []config.SetupInfo
	if err := c.apiCall(ctx, "GET", "/api/setups", nil, &setups); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Setups:\n\n")
	for _, s := range setups {
		fmt.Fprintf(&result, "• %s (%s)\n  %s\n  Red: %d, Black: %d, %s moves first\n\n",
			s.SetupID, s.Name, s.Description, s.RedPieces, s.BlackPieces, s.FirstPlayer)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `Checkers - Complete Rules

BOARD:
8x8 board, rows and columns numbered 0-7. Row 0 is the top.
Only dark squares are used: a square is dark when row+col is odd.

    01234567
  0 .b.b.b.b      b = black man    B = black king
  1 b.b.b.b.      r = red man      R = red king
  2 .b.b.b.b      . = empty
  3 ........
  4 ........
  5 r.r.r.r.
  6 .r.r.r.r
  7 r.r.r.r.

TURNS:
Red moves first unless the setup says otherwise. Players alternate.

MOVEMENT:
• A man steps one square diagonally forward: red toward row 0, black toward row 7
• A king steps one square diagonally in any direction
• The destination must be an empty dark square

CAPTURES:
• Jump two squares diagonally over an adjacent opponent piece onto an empty square
• The jumped piece is removed
• Men capture forward only; kings capture in all four directions
• Capturing is optional when a turn starts

MULTI-JUMPS:
• After a capture, if the same piece can capture again it must keep jumping
• During a chain only that piece may move and only by jumping
• The turn passes when the piece has no further jump

PROMOTION:
• A man reaching the far row (red: row 0, black: row 7) becomes a king
• Promotion ends the turn, even in the middle of a chain

WINNING:
• Capture every opposing piece, or
• Leave the opponent with no legal move on their turn
• There are no draws

COORDINATES:
Every move is (from_row, from_col) -> (to_row, to_col).
Example opening: red 5,0 -> 4,1.

STRATEGY TIPS:
• Call legal_moves to see exactly what is allowed
• Keep your back row occupied to stop the opponent from crowning
• Trade pieces when ahead, avoid trades when behind

Good luck!`

// Formatting helpers

func statusLine(state *engine.GameState) string {
	if state.Finished() {
		return fmt.Sprintf("finished, %s wins", state.Winner)
	}
	return string(engine.StatusInProgress)
}

func formatGameInfo(game *service.GameInfo) string {
	var result strings.Builder

	fmt.Fprintf(&result, "Game: %s\n", game.ID)
	fmt.Fprintf(&result, "Players: red=%s black=%s\n", seat(game.Players.Red), seat(game.Players.Black))
	fmt.Fprintf(&result, "Pieces: red %d | black %d | Moves: %d\n\n", game.RedPieces, game.BlackPieces, game.MoveCount)
	result.WriteString(formatGameState(&game.State))

	return result.String()
}

func seat(playerID string) string {
	if playerID == "" {
		return "(open)"
	}
	return playerID
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	result.WriteString(state.Board.String())
	result.WriteString("\n")

	if state.Finished() {
		fmt.Fprintf(&result, "🏁 GAME OVER: %s wins\n", strings.ToUpper(string(state.Winner)))
		return result.String()
	}

	fmt.Fprintf(&result, "To move: %s\n", state.CurrentPlayer)
	if state.ChainFrom != nil {
		fmt.Fprintf(&result, "Must continue jumping with the piece on (%d,%d)\n", state.ChainFrom.Row, state.ChainFrom.Col)
	}
	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var response strings.Builder

	m := result.Move
	fmt.Fprintf(&response, "✓ %s moved (%d,%d)→(%d,%d)\n", result.Player, m.From.Row, m.From.Col, m.To.Row, m.To.Col)
	if result.Captured != nil {
		fmt.Fprintf(&response, "Captured piece on (%d,%d)\n", result.Captured.Row, result.Captured.Col)
	}
	if result.Promoted {
		response.WriteString("👑 Promoted to king\n")
	}
	if result.MustContinue {
		fmt.Fprintf(&response, "Another jump is available: continue with the piece on (%d,%d)\n", m.To.Row, m.To.Col)
	}

	if len(result.Events) > 0 {
		response.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&response, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if result.Game != nil {
		response.WriteString("\n" + formatGameInfo(result.Game))
	}
	return response.String()
}

func formatLegalMoves(moves *service.LegalMovesResponse) string {
	var result strings.Builder

	fmt.Fprintf(&result, "Legal moves for %s (%d):\n", moves.CurrentPlayer, len(moves.Moves))
	if moves.ChainFrom != nil {
		fmt.Fprintf(&result, "Chain in progress: only the piece on (%d,%d) may jump\n", moves.ChainFrom.Row, moves.ChainFrom.Col)
	}
	if len(moves.Moves) == 0 {
		result.WriteString("No legal moves.\n")
		return result.String()
	}
	for _, m := range moves.Moves {
		kind := "step"
		if m.IsJump() {
			mid := m.Midpoint()
			kind = fmt.Sprintf("jump over (%d,%d)", mid.Row, mid.Col)
		}
		fmt.Fprintf(&result, "- (%d,%d)→(%d,%d) %s\n", m.From.Row, m.From.Col, m.To.Row, m.To.Col, kind)
	}
	return result.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var result strings.Builder

	fmt.Fprintf(&result, "Move History (Page %d/%d, Total: %d moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, rec := range history.Moves {
		m := rec.Move
		fmt.Fprintf(&result, "%d. %s (%d,%d)→(%d,%d)", rec.Seq, rec.Player, m.From.Row, m.From.Col, m.To.Row, m.To.Col)
		if rec.Captured != nil {
			fmt.Fprintf(&result, " x(%d,%d)", rec.Captured.Row, rec.Captured.Col)
		}
		if rec.Promoted {
			result.WriteString(" =K")
		}
		result.WriteString("\n")
	}

	if history.HasNext {
		result.WriteString("\n(more moves on the next page)\n")
	}
	return result.String()
}
