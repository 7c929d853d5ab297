package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryTracksSessions(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	removeA := r.Add(Info{ID: "b", User: "ada", StartedAt: now, Width: 80, Height: 24})
	removeB := r.Add(Info{ID: "a", User: "bob", StartedAt: now.Add(-time.Minute)})
	r.Add(Info{ID: "c", User: "ada", StartedAt: now})

	require.Equal(t, 3, r.Len())
	ids := func(infos []Info) []string {
		out := make([]string, 0, len(infos))
		for _, info := range infos {
			out = append(out, info.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(r.List("")))
	assert.Equal(t, []string{"b", "c"}, ids(r.List("ada")))

	r.Resize("b", 120, 40)
	info, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, 120, info.Width)
	assert.Equal(t, 40, info.Height)
	r.Resize("missing", 1, 1)

	removeA()
	removeA()
	removeB()
	assert.Equal(t, 1, r.Len())
	_, ok = r.Get("b")
	assert.False(t, ok)
}
