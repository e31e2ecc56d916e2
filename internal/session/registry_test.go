package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBindOncePerConnection(t *testing.T) {
	r := NewRegistry()
	c := &Client{Send: make(chan []byte, 1)}

	require.NoError(t, r.Bind(c, "alice", "g1"))

	err := r.Bind(c, "alice", "g2")
	assert.ErrorIs(t, err, ErrAlreadyBound)

	identity, bound := r.Identity(c)
	require.True(t, bound)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "g1", identity.GroupId)
}

func TestRegistryUnbindReportsIdentity(t *testing.T) {
	r := NewRegistry()
	c := &Client{Send: make(chan []byte, 1)}
	require.NoError(t, r.Bind(c, "alice", "g1"))

	identity, wasBound := r.Unbind(c)
	require.True(t, wasBound)
	assert.Equal(t, Identity{Username: "alice", GroupId: "g1"}, identity)

	_, bound := r.Identity(c)
	assert.False(t, bound)
	assert.Empty(t, r.MembersOf("g1"))

	// Unbinding a connection that never joined is a no-op.
	_, wasBound = r.Unbind(&Client{Send: make(chan []byte, 1)})
	assert.False(t, wasBound)
}

func TestRegistryMembersDedupedAndSorted(t *testing.T) {
	r := NewRegistry()

	tab1 := &Client{Send: make(chan []byte, 1)}
	tab2 := &Client{Send: make(chan []byte, 1)}
	other := &Client{Send: make(chan []byte, 1)}

	require.NoError(t, r.Bind(tab1, "bob", "g1"))
	require.NoError(t, r.Bind(tab2, "bob", "g1"))
	require.NoError(t, r.Bind(other, "alice", "g1"))

	assert.Equal(t, []string{"alice", "bob"}, r.MembersOf("g1"))
	assert.Len(t, r.ClientsIn("g1"), 3)

	// One of bob's tabs closing keeps him online.
	r.Unbind(tab1)
	assert.Equal(t, []string{"alice", "bob"}, r.MembersOf("g1"))
	assert.True(t, r.IsOnline("g1", "bob"))

	r.Unbind(tab2)
	assert.Equal(t, []string{"alice"}, r.MembersOf("g1"))
	assert.False(t, r.IsOnline("g1", "bob"))
}

func TestRegistryRoomsAreIndependent(t *testing.T) {
	r := NewRegistry()

	a := &Client{Send: make(chan []byte, 1)}
	b := &Client{Send: make(chan []byte, 1)}
	require.NoError(t, r.Bind(a, "alice", "g1"))
	require.NoError(t, r.Bind(b, "bob", "g2"))

	assert.Equal(t, []string{"alice"}, r.MembersOf("g1"))
	assert.Equal(t, []string{"bob"}, r.MembersOf("g2"))
	assert.Empty(t, r.MembersOf("g3"))
	assert.Empty(t, r.ClientsIn("g3"))
}
