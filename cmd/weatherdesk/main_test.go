package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sean-rowe/weatherdesk/internal/core/domain"
)

// TestConsoleListener_RepeatedDeliveriesNeverBlock covers watch mode: the
// single waitSettled receiver consumes one signal, and every refresh tick
// after that delivers a report with nobody listening. Deliveries must
// return immediately regardless.
func TestConsoleListener_RepeatedDeliveriesNeverBlock(t *testing.T) {
	listener := newConsoleListener()
	report := &domain.WeatherReport{
		Location:     domain.LocationInfo{Name: "Pune", Country: "India"},
		Measurements: domain.Measurements{Temperature: 24, Condition: "Clear"},
	}

	listener.OnReport(report)
	assert.True(t, listener.waitSettled(time.Second))

	done := make(chan struct{})

	go func() {
		for i := 0; i < 20; i++ {
			listener.OnReport(report)
		}

		listener.OnFailure(errors.New("transient"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener delivery blocked with no waiter; refresh ticks would leak goroutines")
	}
}

// TestConsoleListener_WaitSettledTimeout checks the timeout path when no
// outcome ever arrives.
func TestConsoleListener_WaitSettledTimeout(t *testing.T) {
	listener := newConsoleListener()

	assert.False(t, listener.waitSettled(20*time.Millisecond))
}
