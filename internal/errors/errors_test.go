package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrNotFound, "summary not found")
	if err.Code != ErrNotFound {
		t.Errorf("Expected code %s, got %s", ErrNotFound, err.Code)
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("Expected code in message, got %s", err.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := Wrap(ErrNetwork, "request failed", inner)

	if !stderrors.Is(err, inner) {
		t.Error("Expected wrapped error to be found in chain")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected inner message, got %s", err.Error())
	}
}

func TestIsWalksChain(t *testing.T) {
	inner := New(ErrNetwork, "transport failure")
	outer := Wrap(ErrQueueFailed, "failed to queue request", inner)
	wrapped := fmt.Errorf("context: %w", outer)

	if !Is(wrapped, ErrQueueFailed) {
		t.Error("Expected outer code to be found")
	}
	if !Is(wrapped, ErrNetwork) {
		t.Error("Expected inner code to be found through the chain")
	}
	if Is(wrapped, ErrNotFound) {
		t.Error("Expected absent code to not match")
	}
	if Is(nil, ErrNetwork) {
		t.Error("Expected nil error to not match")
	}
	if Is(stderrors.New("plain"), ErrNetwork) {
		t.Error("Expected plain error to not match")
	}
}

func TestIsNetwork(t *testing.T) {
	if !IsNetwork(New(ErrNetwork, "down")) {
		t.Error("Expected network error to classify")
	}
	if IsNetwork(New(ErrAPI, "bad request")) {
		t.Error("Expected API error to not classify as network")
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(New(ErrCancelled, "cancelled")) {
		t.Error("Expected ErrCancelled to classify")
	}
	if !IsCancelled(context.Canceled) {
		t.Error("Expected context.Canceled to classify")
	}
	if !IsCancelled(fmt.Errorf("wrapped: %w", context.Canceled)) {
		t.Error("Expected wrapped context.Canceled to classify")
	}
	if IsCancelled(New(ErrNetwork, "down")) {
		t.Error("Expected network error to not classify as cancelled")
	}
}
