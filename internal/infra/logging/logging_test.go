package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

//nolint:paralleltest
func TestSetup_WritesServiceAndAccount(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := setup(&buf, slog.LevelInfo, "credit-api")

	id := uuid.MustParse("6f1c2a8e-1d7b-4c36-9a43-3b8f0c1e2d55")
	logger.Debug("hidden")
	slog.Info("hold committed", Account(12, id))

	var rec map[string]any
	err := json.Unmarshal(buf.Bytes(), &rec)
	if err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}

	if rec["service"] != "credit-api" {
		t.Fatalf("service: got %v", rec["service"])
	}

	acc, ok := rec["account"].(map[string]any)
	if !ok {
		t.Fatalf("account group missing: %v", rec)
	}
	if acc["id"] != id.String() || acc["tenant_id"] != float64(12) {
		t.Fatalf("account group: got %v", acc)
	}
}
