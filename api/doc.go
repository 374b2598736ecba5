// Package api provides the HTTP surface of a Game On! room.
//
// The api package implements:
//   - The /room WebSocket endpoint used by the mediator
//   - Health and introspection endpoints under /rest
//   - A simulate endpoint for running a single frame through the room
//
// Endpoints:
//
//   - GET /room - WebSocket upgrade
//   - GET /rest/health - Liveness check
//   - GET /rest/room - Room description
//   - GET /rest/sessions - Connected sessions
//   - GET /rest/configs - Room configurations available on disk
//   - POST /rest/configs/refresh - Drop cached configurations and list them again
//   - POST /rest/simulate - Handle a raw frame and return the replies
//
// Simulate:
//
// The request body is one frame in the wire format, for example:
//
//	room,basicRoom,{"userId":"u1","username":"Al","content":"/look"}
//
// The response lists the encoded replies. They are only broadcast to the
// connected sessions when ?publish=true is given.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// Undecodable frames are rejected with 400, frames missing a body field
// with 422.
package api
