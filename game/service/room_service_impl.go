package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/gameon-room/game/engine"
	"github.com/wricardo/gameon-room/protocol"
)

// roomServiceImpl implements the RoomService interface
type roomServiceImpl struct {
	engine   engine.Engine
	sessions SessionLister
	configs  ConfigManager
	log      logrus.FieldLogger
}

// NewRoomService creates a new room service. sessions and configs may be
// nil, in which case the listings are empty.
func NewRoomService(eng engine.Engine, sessions SessionLister, configs ConfigManager, log logrus.FieldLogger) RoomService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &roomServiceImpl{
		engine:   eng,
		sessions: sessions,
		configs:  configs,
		log:      log,
	}
}

// Handle dispatches one decoded message and returns the replies in order
func (s *roomServiceImpl) Handle(ctx context.Context, msg protocol.Message) ([]protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	replies, err := s.engine.Dispatch(msg)
	if err != nil {
		s.log.WithError(err).WithField("target", msg.Target()).Warn("Failed to handle message")
		return nil, err
	}
	return replies, nil
}

// HandleFrame decodes frame and dispatches it. A *protocol.DecodeError is
// returned for frames that cannot be decoded.
func (s *roomServiceImpl) HandleFrame(ctx context.Context, frame string) ([]protocol.Message, error) {
	msg, err := protocol.Decode(frame)
	if err != nil {
		return nil, err
	}
	return s.Handle(ctx, msg)
}

// Room describes the room being served
func (s *roomServiceImpl) Room(ctx context.Context) *RoomInfo {
	room := s.engine.Room()
	return &RoomInfo{
		Name:        room.Name(),
		FullName:    room.FullName(),
		Description: room.Description(),
		Commands:    room.Commands(),
		Inventory:   room.Inventory(),
		Exits:       room.Exits(),
	}
}

// ListSessions returns the connected sessions sorted by ID
func (s *roomServiceImpl) ListSessions(ctx context.Context) []*SessionInfo {
	result := []*SessionInfo{}
	if s.sessions == nil {
		return result
	}

	for _, sess := range s.sessions.List() {
		result = append(result, &SessionInfo{ID: sess.ID(), Open: sess.IsOpen()})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ListConfigs returns the room configurations available on disk
func (s *roomServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	if s.configs == nil {
		return []*ConfigInfo{}, nil
	}
	return s.configs.ListConfigs()
}

// RefreshConfigs drops cached configurations and lists them again from disk.
// The room being served keeps its current configuration.
func (s *roomServiceImpl) RefreshConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	if s.configs == nil {
		return []*ConfigInfo{}, nil
	}
	if err := s.configs.RefreshCache(); err != nil {
		s.log.WithError(err).Warn("Failed to refresh configurations")
		return nil, err
	}
	return s.configs.ListConfigs()
}
