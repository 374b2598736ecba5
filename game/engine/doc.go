// Package engine provides the room logic for a Game On! room node.
//
// The engine package implements:
//   - The room description (name, full name, description, commands,
//     inventory and exits) and its JSON configuration
//   - Dispatching of inbound protocol messages on their target
//   - Slash command handling (/go, /look, /examine, /ping)
//
// Core Types:
//
// The Engine interface defines the contract for interpreting messages,
// implemented by Dispatcher. RoomDescription holds the static room, built
// from a RoomConfig loaded from JSON. CommandProcessor turns a single slash
// command into exactly one reply.
//
// Usage:
//
//	config, err := engine.LoadRoomConfig("configs/room.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	room, err := engine.NewRoomDescription(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dispatcher := engine.NewDispatcher(room, protocol.NewFactory("room-", nil), nil)
//	replies, err := dispatcher.Dispatch(msg)
//
// Room Rules:
//
// The room is stateless apart from the bookmark counter. It does not track
// which players are present; the mediator tells it through roomHello,
// roomJoin, roomGoodbye and roomPart. Movement is delegated: /go replies
// with an exit message and the map service decides where the door leads.
package engine
