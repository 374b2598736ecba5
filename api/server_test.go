package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wricardo/gameon-room/game/engine"
	"github.com/wricardo/gameon-room/game/service"
	"github.com/wricardo/gameon-room/protocol"
)

// MockRoomService implements service.RoomService for testing
type MockRoomService struct {
	HandleFunc       func(ctx context.Context, msg protocol.Message) ([]protocol.Message, error)
	HandleFrameFunc  func(ctx context.Context, frame string) ([]protocol.Message, error)
	RoomFunc         func(ctx context.Context) *service.RoomInfo
	ListSessionsFunc func(ctx context.Context) []*service.SessionInfo
	ListConfigsFunc  func(ctx context.Context) ([]*service.ConfigInfo, error)
	RefreshFunc      func(ctx context.Context) ([]*service.ConfigInfo, error)
}

func (m *MockRoomService) Handle(ctx context.Context, msg protocol.Message) ([]protocol.Message, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, msg)
	}
	return nil, nil
}

func (m *MockRoomService) HandleFrame(ctx context.Context, frame string) ([]protocol.Message, error) {
	if m.HandleFrameFunc != nil {
		return m.HandleFrameFunc(ctx, frame)
	}
	return nil, nil
}

func (m *MockRoomService) Room(ctx context.Context) *service.RoomInfo {
	if m.RoomFunc != nil {
		return m.RoomFunc(ctx)
	}
	return &service.RoomInfo{Name: "mockRoom", FullName: "A Mock Room"}
}

func (m *MockRoomService) ListSessions(ctx context.Context) []*service.SessionInfo {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}
}

func (m *MockRoomService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockRoomService) RefreshConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

type recordingPublisher struct {
	published []protocol.Message
}

func (p *recordingPublisher) Publish(msg protocol.Message) int {
	p.published = append(p.published, msg)
	return 1
}

func newRealService(t *testing.T) service.RoomService {
	t.Helper()
	room, err := engine.NewRoomDescription(engine.DefaultRoomConfig())
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	dispatcher := engine.NewDispatcher(room, protocol.NewFactory("room-", nil), nil)
	return service.NewRoomService(dispatcher, nil, nil, nil)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	server := NewServer(&MockRoomService{}, nil, nil, nil)

	req := httptest.NewRequest("GET", "/rest/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}
}

func TestHandleGetRoom(t *testing.T) {
	server := NewServer(newRealService(t), nil, nil, nil)

	req := httptest.NewRequest("GET", "/rest/room", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var info service.RoomInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode room: %v", err)
	}
	if info.Name != "basicRoom" {
		t.Errorf("Expected basicRoom, got %s", info.Name)
	}
	if info.Commands[engine.PingCommand] != engine.PingCommandHelp {
		t.Errorf("Expected /ping in commands, got %v", info.Commands)
	}
}

func TestHandleListSessions(t *testing.T) {
	server := NewServer(&MockRoomService{
		ListSessionsFunc: func(ctx context.Context) []*service.SessionInfo {
			return []*service.SessionInfo{{ID: "s1", Open: true}, {ID: "s2", Open: false}}
		},
	}, nil, nil, nil)

	req := httptest.NewRequest("GET", "/rest/sessions", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["count"] != float64(2) {
		t.Errorf("Expected count 2, got %v", body["count"])
	}
	sessions, ok := body["sessions"].([]interface{})
	if !ok || len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %v", body["sessions"])
	}
}

func TestHandleListConfigs(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := NewServer(&MockRoomService{
			ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
				return []*service.ConfigInfo{{ConfigID: "room", Filename: "room.json"}}, nil
			},
		}, nil, nil, nil)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest("GET", "/rest/configs", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["count"] != float64(1) {
			t.Errorf("Expected count 1, got %v", body["count"])
		}
	})

	t.Run("error", func(t *testing.T) {
		server := NewServer(&MockRoomService{
			ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
				return nil, errors.New("disk on fire")
			},
		}, nil, nil, nil)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest("GET", "/rest/configs", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", rec.Code)
		}
	})
}

func TestHandleRefreshConfigs(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		refresh    func(ctx context.Context) ([]*service.ConfigInfo, error)
		wantStatus int
		wantCount  float64
	}{
		{
			name:   "success",
			method: "POST",
			refresh: func(ctx context.Context) ([]*service.ConfigInfo, error) {
				return []*service.ConfigInfo{{ConfigID: "attic"}, {ConfigID: "room"}}, nil
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:   "error",
			method: "POST",
			refresh: func(ctx context.Context) ([]*service.ConfigInfo, error) {
				return nil, errors.New("invalid configuration: name is required")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "GET not allowed",
			method:     "GET",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			server := NewServer(&MockRoomService{
				RefreshFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
					called = true
					return tt.refresh(ctx)
				},
			}, nil, nil, nil)

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, httptest.NewRequest(tt.method, "/rest/configs/refresh", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.method != "POST" {
				if called {
					t.Error("Expected no refresh for GET")
				}
				return
			}

			body := decodeBody(t, rec)
			if tt.wantStatus == http.StatusOK && body["count"] != tt.wantCount {
				t.Errorf("Expected count %v, got %v", tt.wantCount, body["count"])
			}
			if tt.wantStatus != http.StatusOK && body["error"] == nil {
				t.Errorf("Expected error message, got %v", body)
			}
		})
	}
}

func TestHandleSimulate(t *testing.T) {
	tests := []struct {
		name       string
		frame      string
		wantStatus int
		wantFrames int
	}{
		{
			name:       "roomHello",
			frame:      `roomHello,basicRoom,{"userId":"u1","username":"Al","version":2}`,
			wantStatus: http.StatusOK,
			wantFrames: 2,
		},
		{
			name:       "ack",
			frame:      `ack,{"version":[1,2]}`,
			wantStatus: http.StatusOK,
			wantFrames: 0,
		},
		{
			name:       "decode error",
			frame:      `bogus,{"a":1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing field",
			frame:      `room,basicRoom,{"userId":"u1","username":"Al"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed body",
			frame:      `room,basicRoom,{"userId":`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(newRealService(t), nil, nil, nil)

			req := httptest.NewRequest("POST", "/rest/simulate", strings.NewReader(tt.frame+"\n"))
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if tt.wantStatus != http.StatusOK {
				if body["error"] == nil {
					t.Error("Expected error message in response")
				}
				return
			}

			replies, _ := body["replies"].([]interface{})
			if len(replies) != tt.wantFrames {
				t.Errorf("Expected %d replies, got %v", tt.wantFrames, body["replies"])
			}
			if body["published"] != false {
				t.Errorf("Expected simulate not to publish by default")
			}
		})
	}
}

func TestHandleSimulate_ExactReply(t *testing.T) {
	server := NewServer(newRealService(t), nil, nil, nil)

	req := httptest.NewRequest("POST", "/rest/simulate",
		strings.NewReader(`room,basicRoom,{"userId":"u1","username":"Al","content":"hello"}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var body struct {
		Replies []string `json:"replies"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	want := `player,*,{"type":"chat","username":"Al","content":"hello","bookmark":"room-1"}`
	if len(body.Replies) != 1 || body.Replies[0] != want {
		t.Errorf("Expected [%s], got %v", want, body.Replies)
	}
}

func TestHandleSimulate_Publish(t *testing.T) {
	publisher := &recordingPublisher{}
	server := NewServer(newRealService(t), nil, publisher, nil)

	req := httptest.NewRequest("POST", "/rest/simulate?publish=true",
		strings.NewReader(`roomGoodbye,basicRoom,{"userId":"u1","username":"Al"}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["published"] != true {
		t.Errorf("Expected published true, got %v", body["published"])
	}
	if len(publisher.published) != 1 || publisher.published[0].TargetID() != protocol.AllPlayers {
		t.Errorf("Expected one broadcast published, got %v", publisher.published)
	}
}

func TestHandleSimulate_TooLarge(t *testing.T) {
	server := NewServer(&MockRoomService{}, nil, nil, nil)

	frame := `room,basicRoom,{"content":"` + strings.Repeat("x", maxFrameSize) + `"}`
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("POST", "/rest/simulate", strings.NewReader(frame)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rec.Code)
	}
}

func TestWebSocketRoute(t *testing.T) {
	called := false
	server := NewServer(&MockRoomService{}, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusSwitchingProtocols)
	}, nil, nil)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("GET", "/room", nil))
	if !called {
		t.Error("Expected /room to reach the websocket handler")
	}

	server = NewServer(&MockRoomService{}, nil, nil, nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("GET", "/room", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a websocket handler, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := NewServer(&MockRoomService{}, nil, nil, nil)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest("GET", "/rest/simulate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
