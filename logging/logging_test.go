package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantLevel string
	}{
		{"default", Options{}, false, ""},
		{"debug", Options{Debug: true}, true, "level=debug"},
		{"promote without debug", Options{Promote: true}, false, ""},
		{"debug and promote", Options{Debug: true, Promote: true}, true, "level=info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Out = &buf
			log := New(tt.opts)

			log.Debug("hidden detail")
			out := buf.String()

			if got := strings.Contains(out, "hidden detail"); got != tt.wantDebug {
				t.Fatalf("Expected debug output %v, got %q", tt.wantDebug, out)
			}
			if tt.wantDebug && !strings.Contains(out, tt.wantLevel) {
				t.Errorf("Expected %s in %q", tt.wantLevel, out)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Debug: true, Promote: true, Out: &buf})

	log.WithField("target", "roomHello").Debug("Dispatching")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "info" {
		t.Errorf("Expected promoted level info, got %v", entry["level"])
	}
	if entry["target"] != "roomHello" {
		t.Errorf("Expected target field, got %v", entry["target"])
	}
}

func TestNew_PromoteKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Promote: true, Out: &buf})

	log.Warn("careful")
	if !strings.Contains(buf.String(), "level=warning") {
		t.Errorf("Expected warning level untouched, got %q", buf.String())
	}
}

func TestNew_PromoteKeepsInfoLevel(t *testing.T) {
	log := New(Options{Promote: true, Out: &bytes.Buffer{}})

	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level without debug, got %v", log.GetLevel())
	}
	if log.IsLevelEnabled(logrus.DebugLevel) {
		t.Error("Expected debug entries to be filtered without debug")
	}
}

func TestFor(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Out: &buf})

	src := &struct{ n int }{}
	For(log, src).Info("hello")

	want := fmt.Sprintf("src=%p", src)
	if !strings.Contains(buf.String(), want) {
		t.Errorf("Expected %s in %q", want, buf.String())
	}
}

func TestFor_NilLogger(t *testing.T) {
	entry, ok := For(nil, t).(*logrus.Entry)
	if !ok {
		t.Fatal("Expected an entry")
	}
	if entry.Logger != logrus.StandardLogger() {
		t.Error("Expected the standard logger")
	}
}
