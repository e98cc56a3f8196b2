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

	"github.com/wricardo/money-dash/game/engine"
	"github.com/wricardo/money-dash/game/service"
	"github.com/wricardo/money-dash/render"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Money Dash",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Money Dash - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players race along a grid board by rolling a die. Land on money tiles to collect cash,
trade money with the other player, and be the first to reach the last tile.
A player whose money drops to zero or below loses by bankruptcy.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions / delete_session
- game_state: Current board, money and turn
- roll_dice, end_turn: Turn flow for the current player
- initiate_trade, send_offer, accept_trade, decline_trade, cancel_trade: Money offers
- send_chat: Chat line in the message log
- rematch, restart: Start the next game of the match, or reset everything
- message_log: Paged message log
- list_configs: Rule presets
- game_instructions: Full rules

Commands act for the player whose turn it is, except accept/decline which act for the
offer's recipient. A rejected command is not an error; the reply explains why.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// sessionTool describes a tool whose only argument is the session id
func sessionTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional rule preset, board layout and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Rule preset to use (optional, see list_configs)",
				},
				"layout": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"wide", "narrow"},
					"description": "Board layout (default wide)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Fixed random seed for a reproducible game (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session"), c.handleGetSession)
	c.mcpServer.AddTool(sessionTool("delete_session", "Delete a session"), c.handleDeleteSession)

	// Game state
	c.mcpServer.AddTool(sessionTool("game_state", "Get the current game state"), c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "message_log",
		Description: "View the message log, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"system", "roll", "move", "money", "win", "trade", "notice", "chat", "bankruptcy"},
					"description": "Only entries of this kind",
				},
				"game": map[string]interface{}{
					"type":        "integer",
					"description": "Only entries of this game number",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMessageLog)

	// Turn flow
	c.mcpServer.AddTool(sessionTool("roll_dice", "Roll the die for the current player and move"), c.commandHandler("roll"))
	c.mcpServer.AddTool(sessionTool("end_turn", "End the current player's turn (after rolling)"), c.commandHandler("end-turn"))

	// Trading
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "initiate_trade",
		Description: "Open a draft money offer from the current player to the other player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"target": map[string]interface{}{
					"type":        "integer",
					"enum":        []int{1, 2},
					"description": "Player who would receive the money",
				},
			},
			Required: []string{"session_id", "target"},
		},
	}, c.handleInitiateTrade)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "send_offer",
		Description: "Send the draft offer with an amount and an optional message",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"amount": map[string]interface{}{
					"type":        "integer",
					"description": "Amount of money offered (at least the preset's minimum)",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Message attached to the offer (up to 140 characters)",
				},
			},
			Required: []string{"session_id", "amount"},
		},
	}, c.handleSendOffer)

	c.mcpServer.AddTool(sessionTool("accept_trade", "Accept the pending offer as its recipient"), c.commandHandler("trade/accept"))
	c.mcpServer.AddTool(sessionTool("decline_trade", "Decline the pending offer as its recipient"), c.commandHandler("trade/decline"))
	c.mcpServer.AddTool(sessionTool("cancel_trade", "Cancel the current draft or pending offer"), c.commandHandler("trade/cancel"))

	// Chat
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "send_chat",
		Description: "Post a chat message as the current player. Shortcuts like (dice) render as emoji",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Chat text",
				},
			},
			Required: []string{"session_id", "text"},
		},
	}, c.handleSendChat)

	// Lifecycle
	c.mcpServer.AddTool(sessionTool("rematch", "Start the next game of the match once the current one is over"), c.commandHandler("rematch"))
	c.mcpServer.AddTool(sessionTool("restart", "Reset the whole match to the starting state"), c.commandHandler("restart"))

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
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

// sessionPath builds /api/sessions/{id}[/suffix]
func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id, _ := args["session_id"].(string)
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("session_id is required")
	}
	path := "/api/sessions/" + url.PathEscape(id)
	if suffix != "" {
		path += "/" + suffix
	}
	return path, nil
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if layout, _ := args["layout"].(string); layout != "" {
		body["layout"] = layout
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\nLayout: %s\n\n%s",
		session.ID, session.ConfigName, session.Layout, formatSnapshot(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		game := 0
		if s.GameState != nil {
			game = s.GameState.GameNumber
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Layout: %s, Game: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.Layout, game, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response map[string]string
	if err := c.apiCall(ctx, "DELETE", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.Snapshot
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&state)), nil
}

func (c *Client) handleMessageLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "log")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	for _, key := range []string{"page", "limit", "game"} {
		if v, ok := intArg(args, key); ok {
			params.Set(key, fmt.Sprint(v))
		}
	}
	for _, key := range []string{"order", "kind"} {
		if v, _ := args[key].(string); v != "" {
			params.Set(key, v)
		}
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page struct {
		Entries    []render.Entry `json:"entries"`
		Total      int            `json:"total_entries"`
		Page       int            `json:"page"`
		TotalPages int            `json:"total_pages"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &page); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Message Log (Page %d/%d), %d entries\n\n", page.Page, page.TotalPages, page.Total)
	for _, e := range page.Entries {
		fmt.Fprintf(&b, "#%d [game %d, turn %d, %s] %s\n", e.Seq, e.Game, e.Turn, e.Kind, e.Display)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// commandHandler proxies a body-less command
func (c *Client) commandHandler(suffix string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return c.runCommand(ctx, arguments(request), suffix, nil)
	}
}

func (c *Client) handleInitiateTrade(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	target, ok := intArg(args, "target")
	if !ok {
		return mcp.NewToolResultError("target is required (1 or 2)"), nil
	}
	return c.runCommand(ctx, args, "trade", map[string]interface{}{"target": target})
}

func (c *Client) handleSendOffer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	amount, ok := intArg(args, "amount")
	if !ok {
		return mcp.NewToolResultError("amount is required"), nil
	}
	message, _ := args["message"].(string)
	return c.runCommand(ctx, args, "trade/send", map[string]interface{}{"amount": amount, "message": message})
}

func (c *Client) handleSendChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	text, _ := args["text"].(string)
	return c.runCommand(ctx, args, "chat", map[string]interface{}{"text": text})
}

func (c *Client) runCommand(ctx context.Context, args map[string]interface{}, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	path, err := sessionPath(args, suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Starting money: $%d, Rematch fee: $%d, Minimum offer: $%d\n\n",
			config.Name, config.ConfigID, config.Description, config.StartingMoney, config.RematchFee, config.MinOffer)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Money Dash - Complete Instructions

GAME OBJECTIVE:
Reach the last tile of the board before the other player, without going bankrupt.

TURN FLOW:
• roll_dice: roll the die and move forward; the position never passes the last tile
• Landing on an uncollected money tile adds its amount to your money
• end_turn: hand the turn to the other player (only after rolling)

WINNING:
• Reaching the last tile wins the game and pays the preset's win bonus
• A player whose money is zero or below is bankrupt; the other player wins

TRADING:
• initiate_trade opens a draft offer from the current player to the target player
• Calling it with yourself as target shows an offer waiting for you
• send_offer sets the amount (at least the minimum offer) and a message
• The recipient (not necessarily the current player) accepts or declines
• Accepting moves the money from sender to recipient; this can cause bankruptcy
• cancel_trade withdraws a draft or pending offer

MATCH:
• rematch starts the next game after a win; each player pays the rematch fee
• After a bankruptcy only restart is possible
• A player who cannot pay forfeits, and the other player is champion of the match
• restart resets the whole match and clears the log

BOARD:
• wide: a 4x4 grid (tiles 0-15), die 1-6
• narrow: a 3x3 grid (tiles 0-8), die 1-4
• Money tiles cover about 30% of the board and are re-placed every game

CHAT:
• send_chat writes to the message log; shortcuts like (dice) (money) (win) render as emoji

Good luck, and may the dice be kind!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nLayout: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Layout,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.GameState))
}

func formatSnapshot(state *engine.Snapshot) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game %d | Turn %d | Board: %s, tiles 0-%d\n",
		state.GameNumber, state.Turn.TurnNumber, state.Board.Mode, state.Board.WinningTile)

	for _, p := range state.Players {
		marker := " "
		if p.ID == state.Turn.CurrentPlayer && !state.Turn.GameOver {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s Player %d %s: tile %d, $%d\n", marker, p.ID, p.Name, p.Position, p.Money)
	}

	if state.Turn.LastDiceRoll != nil {
		fmt.Fprintf(&b, "Rolled this turn: %d (end_turn to pass)\n", *state.Turn.LastDiceRoll)
	} else if !state.Turn.GameOver {
		b.WriteString("Not rolled yet this turn\n")
	}

	var open []string
	for _, sq := range state.MoneySquares {
		if !sq.Collected {
			open = append(open, fmt.Sprintf("%d($%d)", sq.Position, sq.Amount))
		}
	}
	if len(open) > 0 {
		fmt.Fprintf(&b, "Money tiles: %s\n", strings.Join(open, " "))
	}

	if state.Offer != nil {
		fmt.Fprintf(&b, "Offer %s: player %d -> player %d, $%d", state.Offer.Status, state.Offer.From, state.Offer.To, state.Offer.Amount)
		if state.Offer.Message != "" {
			fmt.Fprintf(&b, " %q", render.Substitute(state.Offer.Message))
		}
		b.WriteString("\n")
	}

	if state.Turn.GameOver {
		winner := state.Player(state.Turn.Winner)
		fmt.Fprintf(&b, "\n🏆 GAME OVER: %s wins (%s)\n", winner.Name, state.Turn.GameOverReason)
	}
	if state.Match.Decided {
		if state.Match.Champion.Valid() {
			fmt.Fprintf(&b, "Match decided: %s is champion\n", state.Player(state.Match.Champion).Name)
		} else {
			b.WriteString("Match decided: draw, nobody can pay the rematch fee\n")
		}
	}

	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Accepted {
		fmt.Fprintf(&b, "✓ %s\n", result.Command)
	} else {
		fmt.Fprintf(&b, "✗ %s rejected: %s\n", result.Command, result.Notice)
	}

	for _, e := range result.Entries {
		fmt.Fprintf(&b, "  %s\n", render.Substitute(e.Text))
	}
	if len(result.Events) > 0 {
		types := make([]string, 0, len(result.Events))
		for _, ev := range result.Events {
			types = append(types, ev.Type)
		}
		fmt.Fprintf(&b, "Events: %s\n", strings.Join(types, ", "))
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}
