package service

import (
	"context"

	"github.com/wricardo/gameon-room/game/session"
	"github.com/wricardo/gameon-room/protocol"
)

// RoomService defines all room operations used by the transports
type RoomService interface {
	// Protocol
	Handle(ctx context.Context, msg protocol.Message) ([]protocol.Message, error)
	HandleFrame(ctx context.Context, frame string) ([]protocol.Message, error)

	// Room
	Room(ctx context.Context) *RoomInfo

	// Sessions
	ListSessions(ctx context.Context) []*SessionInfo

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	RefreshConfigs(ctx context.Context) ([]*ConfigInfo, error)
}

// SessionLister exposes the connected sessions
type SessionLister interface {
	List() []session.Session
}

// ConfigManager lists the room configurations on disk
type ConfigManager interface {
	ListConfigs() ([]*ConfigInfo, error)
	RefreshCache() error
}
