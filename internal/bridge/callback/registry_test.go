package callback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueIsMonotonic(t *testing.T) {
	r := New()
	first := r.Issue()
	second := r.Issue()

	assert.NotEqual(t, first, second)
	assert.Less(t, uint64(first), uint64(second))

	// Ids are process wide, not per registry
	other := New().Issue()
	assert.Greater(t, uint64(other), uint64(second))
}

func TestResolveInvokesOnce(t *testing.T) {
	r := New()
	id := r.Issue()

	var got []string
	r.Register(id, func(payload json.RawMessage) {
		got = append(got, string(payload))
	})
	assert.Equal(t, 1, r.Pending())

	assert.True(t, r.Resolve(id, json.RawMessage(`"epubcfi(/6/2)"`)))
	assert.False(t, r.Resolve(id, json.RawMessage(`"again"`)))

	assert.Equal(t, []string{`"epubcfi(/6/2)"`}, got)
	assert.Equal(t, 0, r.Pending())
}

func TestResolveUnknownIsSilent(t *testing.T) {
	r := New()
	called := false
	r.Register(r.Issue(), func(json.RawMessage) { called = true })

	assert.NotPanics(t, func() {
		assert.False(t, r.Resolve(ID(0), nil))
		assert.False(t, r.Resolve(r.Issue(), nil))
	})
	assert.False(t, called)
	assert.Equal(t, 1, r.Pending())
}

func TestRegisterTwicePanics(t *testing.T) {
	r := New()
	id := r.Issue()
	r.Register(id, func(json.RawMessage) {})

	assert.Panics(t, func() {
		r.Register(id, func(json.RawMessage) {})
	})
}

func TestRegisterAfterResolve(t *testing.T) {
	r := New()
	id := r.Issue()
	r.Register(id, nil)
	require.True(t, r.Resolve(id, nil))

	assert.NotPanics(t, func() { r.Register(id, nil) })
}

func TestPurgeAll(t *testing.T) {
	r := New()
	called := 0
	ids := []ID{r.Issue(), r.Issue(), r.Issue()}
	for _, id := range ids {
		r.Register(id, func(json.RawMessage) { called++ })
	}

	assert.Equal(t, 3, r.PurgeAll())
	assert.Equal(t, 0, r.Pending())

	for _, id := range ids {
		assert.False(t, r.Resolve(id, nil))
	}
	assert.Equal(t, 0, called)
	assert.Equal(t, 0, r.PurgeAll())
}
