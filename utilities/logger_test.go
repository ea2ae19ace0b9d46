package utilities

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLevel := Logger.Out, Logger.GetLevel()
	Logger.SetOutput(&buf)
	Logger.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		Logger.SetOutput(prevOut)
		Logger.SetLevel(prevLevel)
	})
	return &buf
}

func TestLogRequestFields(t *testing.T) {
	buf := captureLogs(t)

	LogRequest("req-1", "GET", "/projects", "127.0.0.1:1234", 200, 15*time.Millisecond)

	line := buf.String()
	for _, want := range []string{"request_id=req-1", "method=GET", "path=/projects", "status=200"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestLogErrorIncludesCause(t *testing.T) {
	buf := captureLogs(t)

	LogError(errors.New("connection refused"), "Erro ao buscar projeto")

	line := buf.String()
	if !strings.Contains(line, "connection refused") || !strings.Contains(line, "Erro ao buscar projeto") {
		t.Errorf("unexpected log line %q", line)
	}
	if !strings.Contains(line, "level=error") {
		t.Errorf("expected error level in %q", line)
	}
}

func TestLogDebugRespectsLevel(t *testing.T) {
	buf := captureLogs(t)
	Logger.SetLevel(logrus.InfoLevel)

	LogDebug("hidden %d", 1)
	LogInfo("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("info message missing: %q", out)
	}
}
