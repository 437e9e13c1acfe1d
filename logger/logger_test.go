package logger

import (
	"testing"

	"github.com/AlfredDev/connpool/config"
	"github.com/rs/zerolog"
)

func TestNewSetsDebugLevelInDevelopment(t *testing.T) {
	cfg := &config.Config{Env: "development"}
	_ = New(cfg)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level in development, got %v", zerolog.GlobalLevel())
	}
}

func TestNewSetsInfoLevelOutsideDevelopment(t *testing.T) {
	cfg := &config.Config{Env: "production"}
	_ = New(cfg)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level outside development, got %v", zerolog.GlobalLevel())
	}
}
