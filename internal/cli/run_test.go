package cli

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/log"
)

// blockingService runs until Stop is called
func blockingService(name string, stopped *atomic.Int32) Service {
	done := make(chan struct{})
	return Service{
		Name: name,
		Start: func() error {
			<-done
			return nil
		},
		Stop: func(context.Context) error {
			stopped.Add(1)
			close(done)
			return nil
		},
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	var stopped atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, log.Discard(), time.Second, blockingService("a", &stopped), blockingService("b", &stopped))
	}()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int32(2), stopped.Load())
}

func TestRunStopsOthersWhenOneFails(t *testing.T) {
	var stopped atomic.Int32
	failing := Service{
		Name:  "broken",
		Start: func() error { return errors.New("address already in use") },
		Stop:  func(context.Context) error { return nil },
	}

	err := Run(context.Background(), log.Discard(), time.Second, blockingService("ok", &stopped), failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: address already in use")
	assert.Equal(t, int32(1), stopped.Load())
}

func TestRunReportsStopErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	svc := Service{
		Name: "stubborn",
		Start: func() error {
			<-done
			return nil
		},
		Stop: func(context.Context) error {
			close(done)
			return errors.New("timed out")
		},
	}

	err := Run(ctx, log.Discard(), time.Second, svc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop stubborn: timed out")
}
