package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"atomicpiglets/internal/net"
)

// activeSession is the singleton match session (one per stdio process).
var activeSession *GameSession

// RegisterTools adds all match tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(takeActionTool(), handleTakeAction)
	s.AddTool(getStateTool(), handleGetState)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new exploding-deck card match with you in seat one "+
			"against bot opponents. Returns the opening state: your hand, the table, and "+
			"your numbered legal actions."),
		mcp.WithNumber("opponents", mcp.Required(), mcp.Description("Number of bot opponents (1-9)")),
		mcp.WithNumber("seed", mcp.Description("Optional RNG seed for a reproducible deal")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Play one of your numbered legal actions. Optional fields refine it: "+
			"'target' aims a favor/pair/triple at a player id, 'depth' re-hides a defused card "+
			"that many cards down, 'demand' names the card kind a triple demands or a "+
			"discard-buyback fetches. Bots respond and pending plays resolve before this returns."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the actions of the last reported state")),
		mcp.WithString("target", mcp.Description("Player id for targeted actions")),
		mcp.WithNumber("depth", mcp.Description("Deck depth for re-hiding a defused card, 0 = top")),
		mcp.WithString("demand", mcp.Description("Card kind name, e.g. 'Attack'")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current match state, your legal actions, and events you have "+
			"not seen yet, without acting. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A match is already running. Only one match at a time is supported."), nil
	}

	opponents := request.GetInt("opponents", 0)
	seed := int64(request.GetInt("seed", 0))

	sess, err := NewGameSession(opponents, seed)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start match: %v", err), nil
	}
	activeSession = sess
	return mcp.NewToolResultText(respondJSON(sess.State())), nil
}

func handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No match is running. Use start_game first."), nil
	}
	sess := activeSession

	msg := net.ClientMessage{
		Type:   "action",
		Index:  request.GetInt("index", -1),
		Target: request.GetString("target", ""),
		Depth:  request.GetInt("depth", 0),
		Demand: request.GetString("demand", ""),
	}
	if err := sess.Submit(msg); err != nil {
		return mcp.NewToolResultErrorf("Action rejected: %v", err), nil
	}

	resp := sess.State()
	if resp.GameOver {
		activeSession = nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No match is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(activeSession.State())), nil
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
