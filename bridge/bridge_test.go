package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOffloadReturnsResult(t *testing.T) {
	p := NewPool(2)
	ch := p.Offload(context.Background(), func() (any, error) {
		return 42, nil
	})

	select {
	case r := <-ch:
		require.NoError(t, r.Err)
		require.Equal(t, 42, r.Val)
	case <-time.After(time.Second):
		t.Fatal("offloaded job never completed")
	}
}

func TestOffloadPropagatesError(t *testing.T) {
	p := NewPool(1)
	wantErr := errors.New("driver refused")
	ch := p.Offload(context.Background(), func() (any, error) {
		return nil, wantErr
	})

	r := <-ch
	require.ErrorIs(t, r.Err, wantErr)
}

func TestOffloadDoesNotBlockCallerOnFullPool(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	busy := p.Offload(context.Background(), func() (any, error) {
		<-release
		return nil, nil
	})

	done := make(chan struct{})
	queued := make(chan struct{})
	go func() {
		ch := p.Offload(context.Background(), func() (any, error) { return nil, nil })
		close(queued)
		<-ch
		close(done)
	}()

	select {
	case <-queued:
	case <-time.After(time.Second):
		t.Fatal("Offload blocked while the only worker was busy")
	}

	close(release)
	<-busy
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second job never ran after the first completed")
	}
}
