// Package websocket provides the WebSocket transport for a Game On! room.
//
// The websocket package implements:
//   - The /room endpoint the mediator connects to
//   - Connection lifecycle: ack on open, registry membership, close on error
//   - A single inbound queue feeding the room service
//   - Broadcast of every reply to every connected session
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns the inbound
// queue. Each client connection has a read goroutine that decodes frames and
// submits them to the hub, and a write goroutine that drains its send buffer
// and keeps the connection alive with pings.
//
// Message Protocol:
//
// Frames use the Game On! wire format, one frame per text message:
//
//	<target>,[<targetId>,]<json-object>
//
// A frame that cannot be decoded closes the connection with code 1011 and the
// decode error as the close reason, trimmed to 123 bytes.
//
// Usage:
//
//	registry := session.NewRegistry(log)
//	hub := websocket.NewHub(roomService, registry, log, websocket.WithMirror(bridge))
//	go hub.Run(ctx)
//
//	router.HandleFunc("/room", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Mediator connects and the client is queued an ack
// 2. Client registered with the session registry
// 3. Frames are decoded and handled in arrival order
// 4. Replies are broadcast to every open session
// 5. Disconnection, a bad frame or hub shutdown removes the client
//
// Concurrency:
//
// Sends never block the hub. A client whose buffer is full misses the frame
// and the other clients still receive it.
package websocket
