package platform

import (
	"errors"
	"testing"
	"time"
)

func TestOpenWithoutBoard(t *testing.T) {
	if _, err := Open(); !errors.Is(err, ErrNoBoard) {
		t.Fatalf("Open = %v", err)
	}
}

func TestBusyDelay(t *testing.T) {
	start := time.Now()
	BusyDelay(2 * time.Millisecond)
	if time.Since(start) < 2*time.Millisecond {
		t.Fatal("returned early")
	}
}
