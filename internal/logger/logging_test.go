package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWithWriterFollowsGlobalLevel(t *testing.T) {
	prev := log.GetLevel()
	defer log.SetLevel(prev)

	log.SetLevel(log.WarnLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "dict")

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %q", buf.String())
	}

	l.Warn("shown", "path", "words.bin")
	out := buf.String()
	if !strings.Contains(out, "dict") || !strings.Contains(out, "shown") || !strings.Contains(out, "words.bin") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestNewWithConfig(t *testing.T) {
	l := NewWithConfig("server", log.ErrorLevel, false, false, log.JSONFormatter)
	if l.GetLevel() != log.ErrorLevel {
		t.Errorf("level = %v", l.GetLevel())
	}
	if l.GetPrefix() != "server" {
		t.Errorf("prefix = %q", l.GetPrefix())
	}
}
