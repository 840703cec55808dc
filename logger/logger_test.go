package logger

import "testing"

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "verbose", Format: "console", Output: "stdout"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid level")
	}

	cfg = Config{Level: "debug", Format: "xml", Output: "stdout"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid format")
	}

	cfg = Config{Level: "debug", Format: "json", Output: "stderr"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFields_Pairs(t *testing.T) {
	m := Fields(FieldTask, "fetch", FieldAttempt, 2)
	if m[FieldTask] != "fetch" || m[FieldAttempt] != 2 {
		t.Fatalf("unexpected fields: %v", m)
	}
}

func TestFields_OddArgs(t *testing.T) {
	m := Fields(FieldTask, "fetch", "dangling")
	if len(m) != 1 {
		t.Fatalf("expected dangling key dropped, got %v", m)
	}
}

func TestWithComponent_DoesNotShareState(t *testing.T) {
	base := Nop()
	tagged := base.WithComponent("engine")
	if tagged == base {
		t.Fatal("expected a new logger instance")
	}
}
