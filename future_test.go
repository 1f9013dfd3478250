package kosmos_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosmosdb/kosmos"
)

func TestFuture_CompleteFiresOnce(t *testing.T) {
	f := kosmos.NewFuture()

	f.Complete(kosmos.Document{"ok": true})
	f.Complete(kosmos.Document{"ok": false}) // second call is a silent no-op
	f.Fail(errors.New("should not apply"))

	reply, err := f.Get()
	assert.NoError(t, err)
	assert.Equal(t, kosmos.Document{"ok": true}, reply)
}

func TestFuture_FailFiresOnce(t *testing.T) {
	f := kosmos.NewFuture()
	want := errors.New("boom")

	f.Fail(want)
	f.Complete(kosmos.Document{"ok": true})

	_, err := f.Get()
	assert.Equal(t, want, err)
}

func TestNewFailedFuture(t *testing.T) {
	want := errors.New("boom")
	f := kosmos.NewFailedFuture(want)

	select {
	case <-f.WaitChan():
	default:
		t.Fatal("a failed future should already be fired")
	}

	_, err := f.Get()
	assert.Equal(t, want, err)
}

func TestCommandQueue_FIFO(t *testing.T) {
	cmd1 := kosmos.NewCommandContext(kosmos.Document{"n": 1}, true, false, nil)
	cmd2 := kosmos.NewCommandContext(kosmos.Document{"n": 2}, true, false, nil)

	conn := kosmos.NewConnection(nil, nil, false)
	conn.EnqueueCommand(cmd1)
	conn.EnqueueCommand(cmd2)

	first, ok := conn.PopNextInFlight()
	assert.True(t, ok)
	assert.Equal(t, cmd1, first)

	second, ok := conn.PopNextInFlight()
	assert.True(t, ok)
	assert.Equal(t, cmd2, second)

	_, ok = conn.PopNextInFlight()
	assert.False(t, ok)
}

func TestCommandQueue_Drain(t *testing.T) {
	cmd1 := kosmos.NewCommandContext(kosmos.Document{"n": 1}, true, false, nil)
	cmd2 := kosmos.NewCommandContext(kosmos.Document{"n": 2}, true, false, nil)

	conn := kosmos.NewConnection(nil, nil, false)
	conn.EnqueueCommand(cmd1)
	conn.EnqueueCommand(cmd2)

	drained := conn.DrainQueue()
	assert.Equal(t, []*kosmos.CommandContext{cmd1, cmd2}, drained)

	_, ok := conn.PopNextInFlight()
	assert.False(t, ok, "queue must be empty after drain")
}

func TestCommandContext_MarkNotSentClearsSent(t *testing.T) {
	cmd := kosmos.NewCommandContext(kosmos.Document{}, true, false, nil)
	conn := kosmos.NewConnection(nil, nil, false)
	conn.EnqueueCommand(cmd)

	assert.True(t, cmd.Sent())
	cmd.MarkNotSent()
	assert.False(t, cmd.Sent())
}
