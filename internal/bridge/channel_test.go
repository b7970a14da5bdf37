package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
)

type recorder struct {
	frames []Frame
	err    error
}

func (r *recorder) Send(data []byte) error {
	if r.err != nil {
		return r.err
	}
	f, err := DecodeFrame(data)
	if err != nil {
		return err
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) names() []string {
	names := make([]string, len(r.frames))
	for i, f := range r.frames {
		names[i] = f.Name
	}
	return names
}

func event(t *testing.T, e Event, args ...interface{}) []byte {
	t.Helper()
	data, err := EncodeEvent(e, args...)
	require.NoError(t, err)
	return data
}

func newAttached(t *testing.T) (*Channel, *recorder) {
	t.Helper()
	c := NewChannel(zap.NewNop(), monitoring.NewMetrics())
	rec := &recorder{}
	require.NoError(t, c.Attach(rec))
	return c, rec
}

func TestOverwriteKeepsLatestArgs(t *testing.T) {
	c, rec := newAttached(t)

	c.Enqueue(ActionStartBookLoad, "A")
	c.Enqueue(ActionStartBookLoad, "B")
	assert.Empty(t, rec.frames)

	c.Receive(event(t, EventBridgeReady))

	require.Len(t, rec.frames, 1)
	assert.Equal(t, string(ActionStartBookLoad), rec.frames[0].Name)
	assert.Equal(t, "B", Args(rec.frames[0].Args).String(0))
}

func TestFlushInInsertionOrder(t *testing.T) {
	c, rec := newAttached(t)

	c.Enqueue(ActionShowPreparingMessage, "Preparing")
	c.Enqueue(ActionGotoTOCNode, 3)
	// Overwriting does not move the entry
	c.Enqueue(ActionShowPreparingMessage, "Still preparing")
	assert.Equal(t, []Action{ActionShowPreparingMessage, ActionGotoTOCNode}, c.Pending())

	c.Receive(event(t, EventBridgeReady))

	assert.Equal(t, []string{"show_preparing_message", "goto_toc_node"}, rec.names())
	assert.Equal(t, "Still preparing", Args(rec.frames[0].Args).String(0))
	assert.Empty(t, c.Pending())
}

func TestReadyHookRunsBeforeFlush(t *testing.T) {
	c, rec := newAttached(t)
	c.OnReady(func() {
		assert.True(t, c.Ready())
		c.Enqueue(ActionCreateView, map[string]interface{}{})
	})

	c.Enqueue(ActionStartBookLoad, []string{"/books/one"})
	c.Receive(event(t, EventBridgeReady))

	assert.Equal(t, []string{"create_view", "start_book_load"}, rec.names())
}

func TestImmediateSendAfterReady(t *testing.T) {
	c, rec := newAttached(t)
	c.Receive(event(t, EventBridgeReady))
	require.True(t, c.Ready())

	c.Enqueue(ActionGotoCFI, "epubcfi(/2)")
	c.Enqueue(ActionGotoCFI, "epubcfi(/4)")
	c.Enqueue(ActionShowHomePage)

	assert.Equal(t, []string{"goto_cfi", "goto_cfi", "show_home_page"}, rec.names())
	assert.Equal(t, "epubcfi(/4)", Args(rec.frames[1].Args).String(0))
	assert.Equal(t, 0, Args(rec.frames[2].Args).Len())
}

func TestSecondReadyIsIgnored(t *testing.T) {
	c, rec := newAttached(t)
	readies := 0
	c.OnReady(func() { readies++ })

	c.Enqueue(ActionShowHomePage)
	c.Receive(event(t, EventBridgeReady))
	c.Receive(event(t, EventBridgeReady))

	assert.Equal(t, 1, readies)
	assert.Len(t, rec.frames, 1)
}

func TestInboundDispatch(t *testing.T) {
	c, _ := newAttached(t)

	var got []string
	c.On(EventSelectionChanged, func(args Args) {
		got = append(got, args.String(0))
	})
	c.On(EventViewImage, func(args Args) {
		got = append(got, "image:"+args.String(0))
	})

	c.Receive(event(t, EventSelectionChanged, "some words"))
	c.Receive(event(t, EventViewImage, "cover.jpg"))
	c.Receive(event(t, EventToggleTOC))
	c.Receive([]byte(`{"type":"event","name":"future_event","args":[1]}`))
	c.Receive([]byte(`{"type":"call","name":"selection_changed","args":["wrong direction"]}`))
	c.Receive([]byte(`not json`))
	c.Receive([]byte(`{"type":"event","args":[]}`))

	assert.Equal(t, []string{"some words", "image:cover.jpg"}, got)
}

func TestDispatchBeforeReady(t *testing.T) {
	c, _ := newAttached(t)

	var key string
	c.On(EventSetSessionData, func(args Args) { key = args.String(0) })
	c.Receive(event(t, EventSetSessionData, "base_font_size", 18))

	assert.Equal(t, "base_font_size", key)
	assert.False(t, c.Ready())
}

func TestDetachBeforeReadyKeepsPending(t *testing.T) {
	c, first := newAttached(t)
	c.Enqueue(ActionStartBookLoad, "A")

	assert.False(t, c.Detach())
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, []Action{ActionStartBookLoad}, c.Pending())

	second := &recorder{}
	require.NoError(t, c.Attach(second))
	c.Receive(event(t, EventBridgeReady))

	assert.Empty(t, first.frames)
	assert.Equal(t, []string{"start_book_load"}, second.names())
}

func TestDetachAfterReadyCloses(t *testing.T) {
	c, rec := newAttached(t)
	c.Receive(event(t, EventBridgeReady))

	assert.True(t, c.Detach())
	assert.Equal(t, StateClosed, c.State())

	c.Enqueue(ActionShowHomePage)
	assert.Empty(t, rec.frames)
	assert.Empty(t, c.Pending())

	assert.ErrorIs(t, c.Attach(&recorder{}), ErrClosed)
}

func TestAttachTwice(t *testing.T) {
	c, _ := newAttached(t)
	assert.ErrorIs(t, c.Attach(&recorder{}), ErrAlreadyAttached)
}

func TestEnqueueWhileDisconnected(t *testing.T) {
	c := NewChannel(nil, nil)
	c.Enqueue(ActionShowPreparingMessage, "x")
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, []Action{ActionShowPreparingMessage}, c.Pending())

	// Ready is only reachable with a transport
	c.Receive(event(t, EventBridgeReady))
	assert.False(t, c.Ready())
}

func TestSendFailureDoesNotStopFlush(t *testing.T) {
	c := NewChannel(nil, nil)
	rec := &recorder{err: errors.New("broken pipe")}
	require.NoError(t, c.Attach(rec))

	c.Enqueue(ActionShowHomePage)
	assert.NotPanics(t, func() { c.Receive(event(t, EventBridgeReady)) })
	assert.True(t, c.Ready())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "closed", StateClosed.String())
}

func TestEnqueueDropsUnknownAction(t *testing.T) {
	c, rec := newAttached(t)

	c.Enqueue(Action("eval_script"), "alert(1)")
	c.Enqueue(Action(EventBridgeReady))
	assert.Empty(t, c.Pending())

	c.Receive(event(t, EventBridgeReady))
	c.Enqueue(Action("eval_script"), "alert(1)")
	c.Enqueue(ActionShowHomePage)

	assert.Equal(t, []string{"show_home_page"}, rec.names())
}
