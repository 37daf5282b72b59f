package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPublishQueuesJSON(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Publish(map[string]interface{}{"type": "stock_update", "delta": -1})

	msg := <-h.Broadcast
	assert.JSONEq(t, `{"type":"stock_update","delta":-1}`, string(msg))
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub(zap.NewNop())
	for i := 0; i < cap(h.Broadcast)+10; i++ {
		h.Publish(i)
	}
	assert.Len(t, h.Broadcast, cap(h.Broadcast))

	// Unmarshalable events are dropped.
	h2 := NewHub(zap.NewNop())
	h2.Publish(make(chan int))
	assert.Len(t, h2.Broadcast, 0)
}

func TestRunStops(t *testing.T) {
	h := NewHub(zap.NewNop())
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	h.Stop()
	<-done
	assert.Zero(t, h.ClientCount())
}

func TestJoinAndLeaveReturnAfterStop(t *testing.T) {
	h := NewHub(zap.NewNop())
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	h.Stop()
	<-done
	h.Stop()

	returned := make(chan bool)
	go func() {
		joined := h.Join(nil)
		h.Leave(nil)
		returned <- joined
	}()
	select {
	case joined := <-returned:
		assert.False(t, joined)
	case <-time.After(time.Second):
		t.Fatal("Join or Leave blocked on a stopped hub")
	}
	assert.Zero(t, h.ClientCount())
}
