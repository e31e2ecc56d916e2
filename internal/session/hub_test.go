package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"exploresync-be/internal/model"
	"exploresync-be/internal/repository/memory"
	"exploresync-be/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

type recordingActivity struct {
	mu     sync.Mutex
	groups []string
}

func (r *recordingActivity) PublishActivity(groupId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, groupId)
}

func (r *recordingActivity) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.groups...)
}

type hubFixture struct {
	hub      *Hub
	chat     *service.ChatService
	activity *recordingActivity
}

func newHubFixture() *hubFixture {
	groupRepo := memory.NewGroupRepository()
	groupRepo.Put(model.Group{
		Id:      "g1",
		Title:   "City Trip",
		Host:    "alice",
		Members: datatypes.NewJSONSlice([]string{"alice", "bob", "carol"}),
	})

	userRepo := memory.NewUserRepository()
	for _, username := range []string{"alice", "bob", "carol"} {
		userRepo.Put(username)
	}

	log := noopLogger{}
	groups := service.NewGroupService(groupRepo, time.Minute)
	chat := service.NewChatService(memory.NewMessageRepository(), groups, nil, log)
	notifications := service.NewGroupNotificationService(memory.NewNotificationRepository(), groups, nil, log)
	locations := service.NewLocationService(memory.NewLocationRepository(), userRepo, groups, nil, log)
	counters := service.NewCounterService(memory.NewCounterRepository(), log)

	activity := &recordingActivity{}
	hub := NewHub(chat, notifications, locations, counters, activity, nil, log)

	return &hubFixture{hub: hub, chat: chat, activity: activity}
}

func newTestClient() *Client {
	return &Client{Send: make(chan []byte, 64)}
}

func mustFrame(t *testing.T, event string, payload interface{}) []byte {
	t.Helper()
	frame, err := encodeEvent(event, payload)
	require.NoError(t, err)
	return frame
}

func (f *hubFixture) join(t *testing.T, c *Client, username, groupId string) {
	t.Helper()
	f.hub.dispatch(c, mustFrame(t, EventJoin, JoinPayload{Username: username, GroupId: groupId}))
}

// drain empties the client's buffer; dispatch is synchronous so everything
// already sent is sitting in the channel.
func drain(c *Client) []Envelope {
	var out []Envelope
	for {
		select {
		case frame := <-c.Send:
			var env Envelope
			if err := json.Unmarshal(frame, &env); err == nil {
				out = append(out, env)
			}
		default:
			return out
		}
	}
}

func recvEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case frame := <-c.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return Envelope{}
	}
}

func eventsOf(envs []Envelope) []string {
	names := make([]string, 0, len(envs))
	for _, env := range envs {
		names = append(names, env.Event)
	}
	return names
}

func payloadOf(t *testing.T, envs []Envelope, event string) json.RawMessage {
	t.Helper()
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Event == event {
			return envs[i].Data
		}
	}
	t.Fatalf("no %q frame found in %v", event, eventsOf(envs))
	return nil
}

func (f *hubFixture) chatCount(t *testing.T, c *Client, username string) int64 {
	t.Helper()
	f.hub.dispatch(c, mustFrame(t, EventChatCount, CounterPayload{GroupId: "g1", Username: username}))
	env := recvEnvelope(t, c)
	require.Equal(t, EventGetChatCount, env.Event)
	var count int64
	require.NoError(t, json.Unmarshal(env.Data, &count))
	return count
}

func TestJoinDeliversRoomState(t *testing.T) {
	f := newHubFixture()
	c := newTestClient()

	f.join(t, c, "alice", "g1")
	envs := drain(c)

	require.Equal(t, []string{
		EventUpdateUsers,
		EventGetMessages,
		EventGetChatCount,
		EventGetNotifications,
		EventGetNotificationCount,
	}, eventsOf(envs))

	var presence PresencePayload
	require.NoError(t, json.Unmarshal(payloadOf(t, envs, EventUpdateUsers), &presence))
	assert.Equal(t, []string{"alice"}, presence.OnlineUsers)
	assert.Equal(t, "alice", presence.NewUser)

	// An empty history is an empty array, never null.
	assert.Equal(t, "[]", string(payloadOf(t, envs, EventGetMessages)))
	assert.Equal(t, "[]", string(payloadOf(t, envs, EventGetNotifications)))
	assert.Equal(t, "0", string(payloadOf(t, envs, EventGetChatCount)))
	assert.Equal(t, "0", string(payloadOf(t, envs, EventGetNotificationCount)))
}

func TestSecondJoinOnSameConnectionRejected(t *testing.T) {
	f := newHubFixture()
	c := newTestClient()

	f.join(t, c, "alice", "g1")
	drain(c)

	f.join(t, c, "alice", "g1")
	envs := drain(c)
	require.Equal(t, []string{EventError}, eventsOf(envs))
}

func TestPresenceDedupAcrossConnections(t *testing.T) {
	f := newHubFixture()
	tab1 := newTestClient()
	tab2 := newTestClient()

	f.join(t, tab1, "alice", "g1")
	drain(tab1)

	f.join(t, tab2, "alice", "g1")
	envs := drain(tab2)

	var presence PresencePayload
	require.NoError(t, json.Unmarshal(payloadOf(t, envs, EventUpdateUsers), &presence))
	assert.Equal(t, []string{"alice"}, presence.OnlineUsers)

	// The first tab saw the same snapshot.
	var first PresencePayload
	require.NoError(t, json.Unmarshal(payloadOf(t, drain(tab1), EventUpdateUsers), &first))
	assert.Equal(t, presence.OnlineUsers, first.OnlineUsers)
}

func TestAddMessageBroadcastsStoredCopy(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()
	bob := newTestClient()

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	drain(alice)
	drain(bob)

	f.hub.dispatch(alice, mustFrame(t, EventAddMessage, AddMessagePayload{
		Username: "alice",
		Content:  "meet at the fountain",
		GroupId:  "g1",
	}))

	for _, c := range []*Client{alice, bob} {
		envs := drain(c)
		var msg model.Message
		require.NoError(t, json.Unmarshal(payloadOf(t, envs, EventNewMessage), &msg))
		assert.Equal(t, "alice", msg.Author)
		assert.Equal(t, "meet at the fountain", msg.Content)
		assert.NotEqual(t, uuid.Nil, msg.Id)
		assert.False(t, msg.CreatedAt.IsZero())
	}

	// The sender's own unread count stays at zero.
	assert.Equal(t, int64(1), f.chatCount(t, bob, "bob"))
	assert.Equal(t, int64(0), f.chatCount(t, alice, "alice"))

	assert.Equal(t, []string{"g1"}, f.activity.published())
}

func TestHistoryArrivesInCreationOrder(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()

	f.join(t, alice, "alice", "g1")
	drain(alice)

	for _, content := range []string{"first", "second", "third"} {
		f.hub.dispatch(alice, mustFrame(t, EventAddMessage, AddMessagePayload{
			Username: "alice",
			Content:  content,
			GroupId:  "g1",
		}))
	}
	drain(alice)

	carol := newTestClient()
	f.join(t, carol, "carol", "g1")
	envs := drain(carol)

	var history []model.Message
	require.NoError(t, json.Unmarshal(payloadOf(t, envs, EventGetMessages), &history))
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)

	// Carol was absent for all three, so her unread count matches.
	assert.Equal(t, "3", string(payloadOf(t, envs, EventGetChatCount)))
}

func TestUnreadCountsSkipTheAuthor(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()
	bob := newTestClient()
	carol := newTestClient()

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	f.join(t, carol, "carol", "g1")
	for _, c := range []*Client{alice, bob, carol} {
		drain(c)
	}

	const n = 3
	for i := 0; i < n; i++ {
		f.hub.dispatch(alice, mustFrame(t, EventAddMessage, AddMessagePayload{
			Username: "alice",
			Content:  "ping",
			GroupId:  "g1",
		}))
	}
	for _, c := range []*Client{alice, bob, carol} {
		drain(c)
	}

	assert.Equal(t, int64(n), f.chatCount(t, bob, "bob"))
	assert.Equal(t, int64(n), f.chatCount(t, carol, "carol"))
	assert.Equal(t, int64(0), f.chatCount(t, alice, "alice"))
}

func TestChatReadResetsToZeroIdempotently(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()
	bob := newTestClient()

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	drain(alice)
	drain(bob)

	f.hub.dispatch(alice, mustFrame(t, EventAddMessage, AddMessagePayload{
		Username: "alice", Content: "hi", GroupId: "g1",
	}))
	drain(alice)
	drain(bob)

	for i := 0; i < 2; i++ {
		f.hub.dispatch(bob, mustFrame(t, EventChatRead, CounterPayload{GroupId: "g1", Username: "bob"}))
		env := recvEnvelope(t, bob)
		require.Equal(t, EventGetChatCount, env.Event)
		assert.Equal(t, "0", string(env.Data))
	}

	assert.Equal(t, int64(0), f.chatCount(t, bob, "bob"))
}

func TestAddMessageToMissingGroup(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()
	bob := newTestClient()

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	drain(alice)
	drain(bob)

	f.hub.dispatch(alice, mustFrame(t, EventAddMessage, AddMessagePayload{
		Username: "alice",
		Content:  "anyone here?",
		GroupId:  "ghost",
	}))

	// Exactly one error to the sender, nothing to anyone else.
	envs := drain(alice)
	require.Equal(t, []string{EventError}, eventsOf(envs))
	assert.Empty(t, drain(bob))

	history, err := f.chat.History(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.activity.published())
}

func TestNotificationFlow(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()
	bob := newTestClient()

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	drain(alice)
	drain(bob)

	f.hub.dispatch(alice, mustFrame(t, EventAddNotification, AddNotificationPayload{
		Username:    "alice",
		GroupId:     "g1",
		Title:       "Dinner moved",
		Description: "Now at 8pm",
	}))

	envs := drain(bob)
	var notification model.Notification
	require.NoError(t, json.Unmarshal(payloadOf(t, envs, EventNewNotification), &notification))
	assert.Equal(t, "Dinner moved", notification.Title)

	f.hub.dispatch(bob, mustFrame(t, EventNotificationCount, CounterPayload{GroupId: "g1", Username: "bob"}))
	env := recvEnvelope(t, bob)
	require.Equal(t, EventGetNotificationCount, env.Event)
	assert.Equal(t, "1", string(env.Data))

	f.hub.dispatch(bob, mustFrame(t, EventNotificationRead, CounterPayload{GroupId: "g1", Username: "bob"}))
	env = recvEnvelope(t, bob)
	require.Equal(t, EventGetNotificationCount, env.Event)
	assert.Equal(t, "0", string(env.Data))
}

func TestLocationRoundTrip(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()
	bob := newTestClient()

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	drain(alice)
	drain(bob)

	f.hub.dispatch(alice, mustFrame(t, EventUpdateLocation, UpdateLocationPayload{
		Username:    "alice",
		Coordinates: []float64{51.5074, -0.1278},
		GroupId:     "g1",
	}))

	for _, c := range []*Client{alice, bob} {
		envs := drain(c)
		var loc LocationPayload
		require.NoError(t, json.Unmarshal(payloadOf(t, envs, EventNewLocation), &loc))
		assert.Equal(t, "alice", loc.Username)
		assert.Equal(t, []float64{51.5074, -0.1278}, loc.Coordinates)
		assert.Equal(t, "g1", loc.GroupId)
	}
}

type brokenLocationRepo struct{}

func (brokenLocationRepo) Upsert(context.Context, *model.Location) error {
	return errors.New("storage unavailable")
}

func (brokenLocationRepo) FindByUsername(context.Context, string) (*model.Location, error) {
	return nil, errors.New("storage unavailable")
}

func (brokenLocationRepo) FindByUsernames(context.Context, []string) ([]model.Location, error) {
	return nil, errors.New("storage unavailable")
}

func TestLocationStorageFailureReachesSender(t *testing.T) {
	groupRepo := memory.NewGroupRepository()
	groupRepo.Put(model.Group{
		Id:      "g1",
		Title:   "City Trip",
		Host:    "alice",
		Members: datatypes.NewJSONSlice([]string{"alice", "bob"}),
	})
	userRepo := memory.NewUserRepository()
	userRepo.Put("alice")

	log := noopLogger{}
	groups := service.NewGroupService(groupRepo, time.Minute)
	chat := service.NewChatService(memory.NewMessageRepository(), groups, nil, log)
	notifications := service.NewGroupNotificationService(memory.NewNotificationRepository(), groups, nil, log)
	locations := service.NewLocationService(brokenLocationRepo{}, userRepo, groups, nil, log)
	counters := service.NewCounterService(memory.NewCounterRepository(), log)
	hub := NewHub(chat, notifications, locations, counters, &recordingActivity{}, nil, log)

	alice := newTestClient()
	hub.dispatch(alice, mustFrame(t, EventJoin, JoinPayload{Username: "alice", GroupId: "g1"}))
	drain(alice)

	hub.dispatch(alice, mustFrame(t, EventUpdateLocation, UpdateLocationPayload{
		Username:    "alice",
		Coordinates: []float64{1, 2},
		GroupId:     "g1",
	}))

	// Existence checks fail silently, storage failures do not.
	envs := drain(alice)
	require.Equal(t, []string{EventError}, eventsOf(envs))
}

func TestLocationUpdateForUnknownUserIsSilent(t *testing.T) {
	f := newHubFixture()
	alice := newTestClient()

	f.join(t, alice, "alice", "g1")
	drain(alice)

	f.hub.dispatch(alice, mustFrame(t, EventUpdateLocation, UpdateLocationPayload{
		Username:    "mallory",
		Coordinates: []float64{0, 0},
		GroupId:     "g1",
	}))

	// No broadcast and no error frame either.
	assert.Empty(t, drain(alice))
}

func TestMalformedAndUnknownEvents(t *testing.T) {
	f := newHubFixture()
	c := newTestClient()

	f.hub.dispatch(c, []byte("not json"))
	envs := drain(c)
	require.Equal(t, []string{EventError}, eventsOf(envs))

	f.hub.dispatch(c, mustFrame(t, "teleport", nil))
	envs = drain(c)
	require.Equal(t, []string{EventError}, eventsOf(envs))

	// Payload failing validation never reaches a handler.
	f.hub.dispatch(c, mustFrame(t, EventJoin, JoinPayload{Username: "alice"}))
	envs = drain(c)
	require.Equal(t, []string{EventError}, eventsOf(envs))
	assert.Empty(t, f.hub.registry.MembersOf("g1"))
}

func TestConcurrentJoinsDedupPresence(t *testing.T) {
	f := newHubFixture()
	tab1 := newTestClient()
	tab2 := newTestClient()
	frame := mustFrame(t, EventJoin, JoinPayload{Username: "alice", GroupId: "g1"})

	var wg sync.WaitGroup
	for _, c := range []*Client{tab1, tab2} {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			f.hub.dispatch(c, frame)
		}(c)
	}
	wg.Wait()

	assert.Equal(t, []string{"alice"}, f.hub.registry.MembersOf("g1"))

	// Whatever the interleaving, the final snapshot each tab saw lists
	// alice exactly once.
	for _, c := range []*Client{tab1, tab2} {
		var presence PresencePayload
		require.NoError(t, json.Unmarshal(payloadOf(t, drain(c), EventUpdateUsers), &presence))
		assert.Equal(t, []string{"alice"}, presence.OnlineUsers)
	}
}

func TestBroadcastDuringDisconnectChurn(t *testing.T) {
	f := newHubFixture()
	go f.hub.Run()

	frame := mustFrame(t, EventUpdateUsers, PresencePayload{OnlineUsers: []string{"alice"}})

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					f.hub.deliverLocal("g1", frame)
				}
			}
		}()
	}

	// Connections leaving mid-broadcast must never blow up the fan-out;
	// a frame racing the close is simply dropped.
	for i := 0; i < 500; i++ {
		c := newTestClient()
		f.hub.register <- c
		require.NoError(t, f.hub.registry.Bind(c, "bob", "g1"))
		f.hub.unregister <- c
	}

	close(done)
	wg.Wait()
}

func TestDisconnectBroadcastsDeparture(t *testing.T) {
	f := newHubFixture()
	go f.hub.Run()

	alice := newTestClient()
	bob := newTestClient()
	f.hub.register <- alice
	f.hub.register <- bob

	f.join(t, alice, "alice", "g1")
	f.join(t, bob, "bob", "g1")
	drain(alice)
	drain(bob)

	f.hub.unregister <- bob

	env := recvEnvelope(t, alice)
	require.Equal(t, EventUpdateUsers, env.Event)
	var presence PresencePayload
	require.NoError(t, json.Unmarshal(env.Data, &presence))
	assert.Equal(t, []string{"alice"}, presence.OnlineUsers)
	assert.Empty(t, presence.NewUser)
}
