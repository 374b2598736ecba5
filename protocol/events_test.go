package protocol

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// decodedEvent is an event payload read back from the wire
type decodedEvent struct {
	Type     string            `json:"type"`
	Content  map[string]string `json:"content"`
	Bookmark string            `json:"bookmark"`
}

type testLocation struct {
	name        string
	fullName    string
	description string
	commands    map[string]string
	inventory   []string
}

func (l testLocation) Name() string                { return l.name }
func (l testLocation) FullName() string            { return l.fullName }
func (l testLocation) Description() string         { return l.description }
func (l testLocation) Commands() map[string]string { return l.commands }
func (l testLocation) Inventory() []string         { return l.inventory }

func TestSpecificEvent(t *testing.T) {
	f := NewFactory("room-", nil)

	m := f.SpecificEvent("u1", "There isn't a door in that direction (up)")

	want := `player,u1,{"type":"event","content":{"u1":"There isn't a door in that direction (up)"},"bookmark":"room-1"}`
	if got := m.Encode(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestBroadcastEvent(t *testing.T) {
	f := NewFactory("room-", nil)

	m := f.BroadcastEvent("Al is here", "u1", "Welcome!")

	want := `player,*,{"type":"event","content":{"*":"Al is here","u1":"Welcome!"},"bookmark":"room-1"}`
	if got := m.Encode(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestBroadcastEvent_MultiplePairs(t *testing.T) {
	f := NewFactory("room-", nil)

	m := f.BroadcastEvent("all", "u1", "one", "u2", "two")

	var payload decodedEvent
	if err := json.Unmarshal([]byte(m.Payload()), &payload); err != nil {
		t.Fatalf("Failed to parse payload: %v", err)
	}
	if len(payload.Content) != 3 {
		t.Fatalf("Expected 3 content entries, got %v", payload.Content)
	}
	if payload.Content["u1"] != "one" || payload.Content["u2"] != "two" || payload.Content[AllPlayers] != "all" {
		t.Errorf("Unexpected content: %v", payload.Content)
	}
}

func TestBroadcastEvent_ContentOrder(t *testing.T) {
	tests := []struct {
		name  string
		all   string
		pairs []string
		want  string
	}{
		{
			name:  "insertion order, not sorted",
			all:   "all",
			pairs: []string{"!u1", "a", "b2", "b", "a1", "c"},
			want:  `{"*":"all","!u1":"a","b2":"b","a1":"c"}`,
		},
		{
			name:  "general text first even when ids sort before it",
			all:   "everyone",
			pairs: []string{"!", "bang", "#", "hash"},
			want:  `{"*":"everyone","!":"bang","#":"hash"}`,
		},
		{
			name:  "repeated id keeps its position",
			all:   "all",
			pairs: []string{"u2", "first", "u1", "one", "u2", "second"},
			want:  `{"*":"all","u2":"second","u1":"one"}`,
		},
		{
			name:  "html is not escaped",
			all:   "<b>Al</b> & co",
			pairs: []string{"u1", `say "hi"`},
			want:  `{"*":"<b>Al</b> & co","u1":"say \"hi\""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactory("room-", nil)
			m := f.BroadcastEvent(tt.all, tt.pairs...)

			want := `{"type":"event","content":` + tt.want + `,"bookmark":"room-1"}`
			if got := m.Payload(); got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}
}

func TestBroadcastEvent_UnevenPairs(t *testing.T) {
	f := NewFactory("room-", nil)

	m := f.BroadcastEvent("everyone", "u1", "one", "u2")

	if m.TargetID() != AllPlayers {
		t.Errorf("Expected target id *, got %s", m.TargetID())
	}

	var payload decodedEvent
	if err := json.Unmarshal([]byte(m.Payload()), &payload); err != nil {
		t.Fatalf("Failed to parse payload: %v", err)
	}
	if len(payload.Content) != 1 || payload.Content[AllPlayers] != "everyone" {
		t.Errorf("Expected only the general content, got %v", payload.Content)
	}
	if payload.Bookmark != "room-1" {
		t.Errorf("Expected bookmark room-1, got %s", payload.Bookmark)
	}
}

func TestChatMessage(t *testing.T) {
	f := NewFactory("room-", nil)
	f.SpecificEvent("u1", "first")

	m := f.ChatMessage("Al", "<b>hello</b> & bye")

	want := `player,*,{"type":"chat","username":"Al","content":"<b>hello</b> & bye","bookmark":"room-2"}`
	if got := m.Encode(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestLocationMessage(t *testing.T) {
	f := NewFactory("room-", nil)

	full := testLocation{
		name:        "Lobby",
		fullName:    "The Lobby",
		description: "A plain room.",
		commands:    map[string]string{"/ping": "Does this work?"},
		inventory:   []string{"chair", "lamp"},
	}
	m := f.LocationMessage("u1", full)

	want := `player,u1,{"type":"location","name":"Lobby","fullName":"The Lobby","description":"A plain room.","commands":{"/ping":"Does this work?"},"roomInventory":["chair","lamp"]}`
	if got := m.Encode(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	bare := f.LocationMessage("u1", testLocation{name: "Lobby", fullName: "The Lobby", description: "A plain room."})
	if strings.Contains(bare.Payload(), "commands") || strings.Contains(bare.Payload(), "roomInventory") {
		t.Errorf("Empty commands and inventory should be omitted, got %s", bare.Payload())
	}

	if f.Bookmarks().Current() != 0 {
		t.Errorf("Location messages should not advance the bookmark, got %d", f.Bookmarks().Current())
	}
}

func TestExitMessage(t *testing.T) {
	f := NewFactory("room-", nil)

	m, err := f.ExitMessage("u1", "n", "You head North")
	if err != nil {
		t.Fatalf("ExitMessage failed: %v", err)
	}
	want := `playerLocation,u1,{"type":"exit","exitId":"n","content":"You head North"}`
	if got := m.Encode(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	m, err = f.ExitMessage("u1", "s", "")
	if err != nil {
		t.Fatalf("ExitMessage failed: %v", err)
	}
	if !strings.Contains(m.Payload(), `"content":"Fare thee well"`) {
		t.Errorf("Expected default exit content, got %s", m.Payload())
	}

	if _, err := f.ExitMessage("u1", "", "text"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	if f.Bookmarks().Current() != 0 {
		t.Errorf("Exit messages should not advance the bookmark, got %d", f.Bookmarks().Current())
	}
}

func TestBookmarks_Monotonic(t *testing.T) {
	f := NewFactory("room-", nil)

	last := 0
	for i := 0; i < 50; i++ {
		var m Message
		switch i % 3 {
		case 0:
			m = f.SpecificEvent("u1", "x")
		case 1:
			m = f.BroadcastEvent("x")
		default:
			m = f.ChatMessage("Al", "x")
		}

		var payload struct {
			Bookmark string `json:"bookmark"`
		}
		if err := json.Unmarshal([]byte(m.Payload()), &payload); err != nil {
			t.Fatalf("Failed to parse payload: %v", err)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(payload.Bookmark, "room-"))
		if err != nil {
			t.Fatalf("Bad bookmark %q: %v", payload.Bookmark, err)
		}
		if n <= last {
			t.Fatalf("Bookmark %d is not greater than %d", n, last)
		}
		last = n
	}
}

func TestBookmarks_Concurrent(t *testing.T) {
	b := NewBookmarks("room-")

	const workers, perWorker = 20, 100
	results := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				results <- b.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, workers*perWorker)
	for r := range results {
		if seen[r] {
			t.Fatalf("Bookmark %s handed out twice", r)
		}
		seen[r] = true
	}
	if b.Current() != workers*perWorker {
		t.Errorf("Expected counter at %d, got %d", workers*perWorker, b.Current())
	}
}
