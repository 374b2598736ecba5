package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/gameon-room/game/service"
	"github.com/wricardo/gameon-room/protocol"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// SimulateResult is the response of POST /rest/simulate
type SimulateResult struct {
	Frame     string   `json:"frame"`
	Replies   []string `json:"replies"`
	Published bool     `json:"published"`
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Game On! Room",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Game On! Room - MCP Interface

This is a thin client that proxies all requests to the room's REST API.

The room speaks a line protocol with the Game On! mediator:
  <target>,[<targetId>,]<json-object>

AVAILABLE TOOLS:
- room_describe: Get the room's name, description, commands, inventory and exits
- list_sessions: List the websocket sessions connected to the room
- list_configs: List room configurations available on disk
- refresh_configs: Reread the config directory after editing room files
- simulate_frame: Run one raw protocol frame through the room and see the replies
- room_say: Send chat or a slash command as a player
- protocol_instructions: Explain the wire protocol and the room's commands

Frames are only broadcast to connected sessions when publish is true.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_describe",
		Description: "Describe the room served by this node",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRoomDescribe)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List the websocket sessions connected to the room",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List room configurations available on disk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "refresh_configs",
		Description: "Drop cached room configurations and list them again from disk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRefreshConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate_frame",
		Description: "Handle one raw protocol frame and return the encoded replies",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"frame": map[string]interface{}{
					"type":        "string",
					"description": `Frame in wire format, e.g. room,basicRoom,{"userId":"u1","username":"Al","content":"/look"}`,
				},
				"publish": map[string]interface{}{
					"type":        "boolean",
					"description": "Broadcast the replies to connected sessions (default false)",
				},
			},
			Required: []string{"frame"},
		},
	}, c.handleSimulateFrame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_say",
		Description: "Say something in the room as a player. Text starting with '/' is a command (/go, /look, /examine, /ping)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Player id",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Player display name",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Chat text or slash command",
				},
				"publish": map[string]interface{}{
					"type":        "boolean",
					"description": "Broadcast the replies to connected sessions (default false)",
				},
			},
			Required: []string{"user_id", "username", "content"},
		},
	}, c.handleRoomSay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "protocol_instructions",
		Description: "Explain the room protocol and commands",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleProtocolInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

// apiCall sends body as JSON, or as plain text when it is a string, and
// decodes the JSON response into result
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
		contentType = "text/plain"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
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

// simulate posts frame to the simulate endpoint
func (c *Client) simulate(ctx context.Context, frame string, publish bool) (*SimulateResult, error) {
	path := "/rest/simulate"
	if publish {
		path += "?" + url.Values{"publish": {"true"}}.Encode()
	}

	var result SimulateResult
	if err := c.apiCall(ctx, "POST", path, frame, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Tool handlers

func (c *Client) handleRoomDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var room service.RoomInfo
	if err := c.apiCall(ctx, "GET", "/rest/room", nil, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomInfo(&room)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/rest/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Connected Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := "open"
		if !s.Open {
			state = "closing"
		}
		result += fmt.Sprintf("- %s (%s)\n", s.ID, state)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.configsResult(ctx, "GET", "/rest/configs")
}

func (c *Client) handleRefreshConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.configsResult(ctx, "POST", "/rest/configs/refresh")
}

// configsResult formats a configuration listing returned by the REST API
func (c *Client) configsResult(ctx context.Context, method, path string) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                  `json:"count"`
		Configs []service.ConfigInfo `json:"configs"`
	}

	if err := c.apiCall(ctx, method, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range response.Configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Commands: %d, Exits: %d\n\n",
			config.ConfigID, config.FullName, config.Description, config.Commands, config.Exits)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSimulateFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	frame, _ := args["frame"].(string)
	publish, _ := args["publish"].(bool)

	if strings.TrimSpace(frame) == "" {
		return mcp.NewToolResultError("frame is required"), nil
	}

	result, err := c.simulate(ctx, frame, publish)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulateResult(result)), nil
}

func (c *Client) handleRoomSay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	userID, _ := args["user_id"].(string)
	username, _ := args["username"].(string)
	content, _ := args["content"].(string)
	publish, _ := args["publish"].(bool)

	if userID == "" || username == "" {
		return mcp.NewToolResultError("user_id and username are required"), nil
	}

	// The room id in the frame is informational; the room answers anything
	// sent to it.
	var room service.RoomInfo
	if err := c.apiCall(ctx, "GET", "/rest/room", nil, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	frame := protocol.RoomMessage(room.Name, userID, username, content).Encode()
	result, err := c.simulate(ctx, frame, publish)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulateResult(result)), nil
}

func (c *Client) handleProtocolInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Game On! Room - Protocol

WIRE FORMAT:
  <target>,[<targetId>,]<json-object>
  One websocket text message per frame.

INBOUND TARGETS (mediator -> room):
  roomHello,<roomId>,{"userId":"u1","username":"Al","version":2}
    Player entered. Replies: location to the player, "Al is here" to everyone.
  roomJoin,<roomId>,{"userId":"u1","username":"Al","version":2}
    Player reconnected. Replies: location to the player.
  roomGoodbye,<roomId>,{"userId":"u1","username":"Al"}
    Player left. Replies: "Al has gone" to everyone.
  roomPart,<roomId>,{"userId":"u1","username":"Al"}
    Player's connection dropped. No reply.
  room,<roomId>,{"userId":"u1","username":"Al","content":"hello"}
    Chat, or a command when content starts with '/'.

OUTBOUND TARGETS (room -> mediator):
  ack,{"version":[1,2]}                    sent once when a connection opens
  player,<userId|*>,{"type":"event"|"chat"|"location",...}
  playerLocation,<userId>,{"type":"exit","exitId":"n","content":"You head North"}

COMMANDS:
  /go <north|south|east|west|n|s|e|w>   leave the room
  /look, /examine [room]                 describe the room
  /ping [text]                           check the room is alive

BOOKMARKS:
  Event and chat messages carry a bookmark ("room-1", "room-2", ...) that
  increases with every message.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatRoomInfo(room *service.RoomInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n\n%s\n", room.FullName, room.Name, room.Description)

	if len(room.Commands) > 0 {
		sb.WriteString("\nCommands:\n")
		for _, name := range sortedKeys(room.Commands) {
			fmt.Fprintf(&sb, "  %s - %s\n", name, room.Commands[name])
		}
	}

	if len(room.Inventory) > 0 {
		fmt.Fprintf(&sb, "\nInventory: %s\n", strings.Join(room.Inventory, ", "))
	}

	if len(room.Exits) > 0 {
		sb.WriteString("\nExits:\n")
		for _, exit := range sortedKeys(room.Exits) {
			fmt.Fprintf(&sb, "  %s - %s\n", exit, room.Exits[exit])
		}
	}

	return sb.String()
}

func formatSimulateResult(result *SimulateResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Frame: %s\n", result.Frame)

	if len(result.Replies) == 0 {
		sb.WriteString("No replies\n")
	} else {
		fmt.Fprintf(&sb, "Replies (%d):\n", len(result.Replies))
		for i, reply := range result.Replies {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, reply)
		}
	}

	if result.Published {
		sb.WriteString("Published to connected sessions\n")
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
