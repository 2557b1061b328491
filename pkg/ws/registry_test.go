package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

func TestRegistry_AdmitCapacity(t *testing.T) {
	r := NewRegistry(2)
	require.NoError(t, r.Admit("a", nil, epoch))
	require.NoError(t, r.Admit("b", nil, epoch))

	assert.ErrorIs(t, r.Admit("c", nil, epoch), ErrCapacityExceeded)
	assert.ErrorIs(t, r.Admit("a", nil, epoch), ErrClientIDExists)
	assert.Equal(t, 2, r.Len())
	assert.Empty(t, r.List())

	r.Remove("a")
	assert.NoError(t, r.Admit("c", nil, epoch))
}

func TestRegistry_IdentifyOverwrites(t *testing.T) {
	r := NewRegistry(10)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Admit(id, nil, epoch))
	}

	_, err := r.Identify("zzz", "u0", "Nobody", "staf", epoch)
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = r.Identify("b", "u2", "Budi", "staf", epoch)
	require.NoError(t, err)
	_, err = r.Identify("a", "u1", "Agnes", "sekretaris", epoch)
	require.NoError(t, err)
	r.CountMessage("b")

	later := epoch.Add(time.Minute)
	rec, err := r.Identify("b", "u2b", "Budi Santoso", "admin", later)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.MessageCount)
	assert.Equal(t, later, rec.JoinedAt)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "u2b", list[0].UserID)
	assert.Equal(t, "u1", list[1].UserID)
	assert.Equal(t, 2, r.Identified())
}

func TestRegistry_SameUserManyConnections(t *testing.T) {
	r := NewRegistry(10)
	for _, id := range []string{"tab-1", "tab-2"} {
		require.NoError(t, r.Admit(id, nil, epoch))
		_, err := r.Identify(id, "u1", "Agnes", "staf", epoch)
		require.NoError(t, err)
	}
	assert.Len(t, r.List(), 2)
}

func TestRegistry_TouchAndIdle(t *testing.T) {
	r := NewRegistry(10)
	require.NoError(t, r.Admit("a", nil, epoch))
	require.NoError(t, r.Admit("b", nil, epoch))
	_, err := r.Identify("a", "u1", "Agnes", "staf", epoch)
	require.NoError(t, err)

	r.Touch("unknown", epoch.Add(time.Hour))
	r.Touch("a", epoch.Add(5*time.Minute))

	rec, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, epoch.Add(5*time.Minute), rec.LastActivity)

	idle := r.Idle(epoch.Add(10*time.Minute+time.Second), 10*time.Minute)
	assert.Equal(t, []string{"b"}, idle)

	assert.Empty(t, r.Idle(epoch.Add(10*time.Minute), 10*time.Minute))
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	r := NewRegistry(10)
	require.NoError(t, r.Admit("a", nil, epoch))
	require.NoError(t, r.Admit("b", nil, epoch))
	_, err := r.Identify("a", "u1", "Agnes", "staf", epoch)
	require.NoError(t, err)

	rec, existed := r.Remove("a")
	assert.True(t, existed)
	require.NotNil(t, rec)
	assert.Equal(t, "u1", rec.UserID)

	rec, existed = r.Remove("a")
	assert.False(t, existed)
	assert.Nil(t, rec)

	rec, existed = r.Remove("b")
	assert.True(t, existed)
	assert.Nil(t, rec)

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.List())
}
