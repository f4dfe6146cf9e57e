package main

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

	"github.com/wricardo/checkers-game/game/engine"
	"github.com/wricardo/checkers-game/game/service"
	"github.com/wricardo/checkers-game/game/stats"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
	Reason  string `json:"reason"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: %d", e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Client talks to the checkers REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateGame(ctx context.Context, playerID, setupID string) (*service.GameInfo, error) {
	var game service.GameInfo
	req := service.CreateGameRequest{PlayerID: playerID, SetupID: setupID}
	if err := c.do(ctx, http.MethodPost, "/api/games", req, &game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &game, nil
}

func (c *Client) JoinGame(ctx context.Context, gameID, playerID string) (*service.GameInfo, error) {
	var game service.GameInfo
	body := map[string]string{"player_id": playerID}
	if err := c.do(ctx, http.MethodPost, "/api/games/"+url.PathEscape(gameID)+"/join", body, &game); err != nil {
		return nil, fmt.Errorf("join game: %w", err)
	}
	return &game, nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*service.GameInfo, error) {
	var game service.GameInfo
	if err := c.do(ctx, http.MethodGet, "/api/games/"+url.PathEscape(gameID), nil, &game); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return &game, nil
}

func (c *Client) Move(ctx context.Context, gameID, playerID string, m engine.Move) (*service.MoveResult, error) {
	body := map[string]interface{}{
		"from_row":  m.From.Row,
		"from_col":  m.From.Col,
		"to_row":    m.To.Row,
		"to_col":    m.To.Col,
		"player_id": playerID,
	}
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, "/api/games/"+url.PathEscape(gameID)+"/moves", body, &result); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	return &result, nil
}

func (c *Client) Stats(ctx context.Context, playerID string) (*stats.PlayerStats, error) {
	var s stats.PlayerStats
	if err := c.do(ctx, http.MethodGet, "/api/stats/"+url.PathEscape(playerID), nil, &s); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
