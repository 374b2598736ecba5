// Package service provides the room layer shared by every transport.
//
// The service package implements:
//   - Decoding and dispatching of protocol frames
//   - Room description lookups
//   - Listing of connected sessions and available room configurations
//   - Refreshing the configuration cache after files change on disk
//
// Core Interfaces:
//
// RoomService is the main service interface used by the websocket hub, the
// REST API and the NATS bridge. SessionLister and ConfigManager are the
// collaborators it reads from.
//
// Architecture:
//
// The service layer sits between the transport layer (WebSocket/HTTP/NATS)
// and the room engine. It never sends anything itself; callers deliver the
// returned replies.
//
// Usage:
//
//	dispatcher := engine.NewDispatcher(room, protocol.NewFactory("room-", log), log)
//	roomService := service.NewRoomService(dispatcher, registry, configMgr, log)
//
//	replies, err := roomService.HandleFrame(ctx, frame)
//	if err != nil {
//		return err
//	}
//	for _, reply := range replies {
//		registry.Broadcast(reply.Encode())
//	}
package service
