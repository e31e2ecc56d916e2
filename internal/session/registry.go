package session

import (
	"errors"
	"sort"
	"sync"
)

// ErrAlreadyBound is returned on a second join attempt for the same
// connection. A connection gets one join for its lifetime; rejoining
// requires a fresh connection.
var ErrAlreadyBound = errors.New("connection is already bound to a group")

// Identity is the (username, group) pair a connection is bound to.
type Identity struct {
	Username string
	GroupId  string
}

// Registry tracks which connections are bound to which group room. It is
// the only shared mutable state of the session layer; everything in here is
// ephemeral and rebuilt from live connections after a restart.
type Registry struct {
	mu         sync.RWMutex
	identities map[*Client]Identity
	rooms      map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[*Client]Identity),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

// Bind associates a connection with an identity. At most one bind per
// connection.
func (r *Registry) Bind(client *Client, username, groupId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, bound := r.identities[client]; bound {
		return ErrAlreadyBound
	}

	r.identities[client] = Identity{Username: username, GroupId: groupId}
	if _, ok := r.rooms[groupId]; !ok {
		r.rooms[groupId] = make(map[*Client]struct{})
	}
	r.rooms[groupId][client] = struct{}{}
	return nil
}

// Unbind removes the connection and reports the identity it held. No-op
// for connections that never joined.
func (r *Registry) Unbind(client *Client) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, bound := r.identities[client]
	if !bound {
		return Identity{}, false
	}

	delete(r.identities, client)
	if members, ok := r.rooms[identity.GroupId]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(r.rooms, identity.GroupId)
		}
	}
	return identity, true
}

// Identity returns the binding of a connection, if any.
func (r *Registry) Identity(client *Client) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, bound := r.identities[client]
	return identity, bound
}

// MembersOf returns the usernames currently connected to a room. A user
// holding several connections (multiple tabs) appears once. Sorted for
// stable snapshots.
func (r *Registry) MembersOf(groupId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	users := make([]string, 0)
	for client := range r.rooms[groupId] {
		identity := r.identities[client]
		if _, dup := seen[identity.Username]; dup {
			continue
		}
		seen[identity.Username] = struct{}{}
		users = append(users, identity.Username)
	}
	sort.Strings(users)
	return users
}

// ClientsIn snapshots the connections of a room for fan-out.
func (r *Registry) ClientsIn(groupId string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.rooms[groupId]))
	for client := range r.rooms[groupId] {
		clients = append(clients, client)
	}
	return clients
}

// IsOnline reports whether a user has at least one live connection in the
// room.
func (r *Registry) IsOnline(groupId, username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for client := range r.rooms[groupId] {
		if r.identities[client].Username == username {
			return true
		}
	}
	return false
}
