// Package protocol implements the Game On! room wire protocol.
//
// The protocol package implements:
//   - Decoding raw WebSocket text frames into typed messages
//   - Encoding messages back into frames
//   - Event factories for player-bound replies (events, chat, location, exit)
//   - The bookmark counter embedded in event-class messages
//
// Wire Format:
//
// Every frame carries a routing prefix followed by a JSON object:
//
//	<target>,[<targetId>,]<json-object>
//
// The target is one of ack, player, playerLocation, room, roomHello, roomJoin,
// roomPart or roomGoodbye. The targetId is omitted for ack frames, otherwise it
// is a room id, a user id, or "*" for all players. Commas inside the JSON
// payload are never treated as separators: only commas before the first '{'
// split the routing prefix.
//
// Usage:
//
//	msg, err := protocol.Decode(`room,room1,{"userId":"u1","username":"Al","content":"hi"}`)
//	if err != nil {
//		var decodeErr *protocol.DecodeError
//		errors.As(err, &decodeErr)
//	}
//
//	events := protocol.NewFactory("room-", logger)
//	reply := events.ChatMessage("Al", "hi")
//	frame := reply.Encode() // player,*,{"type":"chat",...}
//
// Bookmarks:
//
// A Factory owns one Bookmarks counter. It is created once at startup and
// advanced exactly once for every event, broadcast event and chat message it
// builds. Location and exit messages carry no bookmark.
package protocol
