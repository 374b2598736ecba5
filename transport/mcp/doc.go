// Package mcp provides a Model Context Protocol server for operating a Game On! room.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions proxied to the room's REST API
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - room_describe: Room name, description, commands, inventory and exits
//   - list_sessions: Websocket sessions connected to the room
//   - list_configs: Room configurations available on disk
//   - refresh_configs: Reread the config directory and list it again
//   - simulate_frame: Run a raw protocol frame through the room
//   - room_say: Chat or issue a slash command as a player
//   - protocol_instructions: Wire protocol reference
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: The /mcp endpoint mounted by the room server
//
// Simulated frames are not broadcast unless the publish argument is true,
// so agents can explore the room without disturbing connected players.
package mcp
