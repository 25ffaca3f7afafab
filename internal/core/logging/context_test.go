package logging

import (
	"context"
	"testing"
)

func TestWithUser(t *testing.T) {
	ctx := WithUser(context.Background(), "ana@example.com")

	if got := GetUser(ctx); got != "ana@example.com" {
		t.Errorf("GetUser() = %q, want %q", got, "ana@example.com")
	}
}

func TestWithCommand(t *testing.T) {
	ctx := WithCommand(context.Background(), "task add")

	if got := GetCommand(ctx); got != "task add" {
		t.Errorf("GetCommand() = %q, want %q", got, "task add")
	}
}

func TestGetters_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetUser(ctx); got != "" {
		t.Errorf("GetUser() = %q, want empty string", got)
	}
	if got := GetCommand(ctx); got != "" {
		t.Errorf("GetCommand() = %q, want empty string", got)
	}
}
