package logbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSnapshotKeepsNewestMessages(t *testing.T) {
	b := New(2, nil)
	b.Publish("request", 1)
	b.Publish("request", 2)
	b.Publish("request", 3)

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 2, snap[0].Data)
	assert.Equal(t, 3, snap[1].Data)
}

func TestSubscribeReceivesAndCancelCloses(t *testing.T) {
	b := New(10, nil)
	ch, cancel := b.Subscribe(4)

	b.Publish("request", "hello")
	msg := <-ch
	assert.Equal(t, "hello", msg.Data)

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestLogMirrorsToZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := New(10, zap.New(core))

	b.Log("warn", "请求过于频繁", map[string]any{"path": "/api/health"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "请求过于频繁", entries[0].Message)
	assert.Equal(t, "/api/health", entries[0].ContextMap()["path"])

	snap := b.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "log", snap[0].Type)
}

func TestClosedBusDropsPublishes(t *testing.T) {
	b := New(10, nil)
	ch, _ := b.Subscribe(1)
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)
	b.Publish("request", 1)
	assert.Empty(t, b.Snapshot())
}
