package session

import (
	"context"
	"encoding/json"
	"errors"

	"exploresync-be/internal/model"
	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries room broadcasts between hub instances.
const redisChannel = "room_events"

// Hub is the session core: it owns connection registration, binds
// connections to group rooms on join, routes inbound events to handlers and
// fans outbound events to the right room. Handler errors reach only the
// acting connection; nothing in here can take the process down.
type Hub struct {
	registry *Registry

	// Register/unregister requests from connections.
	register   chan *Client
	unregister chan *Client

	chat          *service.ChatService
	notifications *service.GroupNotificationService
	locations     *service.LocationService
	counters      *service.CounterService
	activity      service.IActivityPublisher

	// Redis connection for cross-instance room fan-out; nil degrades to
	// single-instance delivery.
	rdb        *redis.Client
	instanceId string

	validate *validator.Validate
	logger   logger.ILogger
}

func NewHub(
	chat *service.ChatService,
	notifications *service.GroupNotificationService,
	locations *service.LocationService,
	counters *service.CounterService,
	activity service.IActivityPublisher,
	rdb *redis.Client,
	log logger.ILogger,
) *Hub {
	return &Hub{
		registry:      NewRegistry(),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		chat:          chat,
		notifications: notifications,
		locations:     locations,
		counters:      counters,
		activity:      activity,
		rdb:           rdb,
		instanceId:    uuid.NewString(),
		validate:      validator.New(),
		logger:        log,
	}
}

// Registry exposes room membership for collaborators (presence queries).
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run owns the connection lifecycle. Clients enter unbound; the registry
// only learns about them on join.
func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	// Connection set confined to this goroutine; guards double-unregister
	// when a slow client is dropped while its read pump is also exiting.
	clients := make(map[*Client]struct{})

	for {
		select {
		case client := <-h.register:
			clients[client] = struct{}{}

		case client := <-h.unregister:
			if _, ok := clients[client]; !ok {
				continue
			}
			delete(clients, client)
			client.closeSend()

			identity, wasBound := h.registry.Unbind(client)
			if !wasBound {
				continue
			}
			h.logger.Info("Hub", "Client left room", map[string]interface{}{
				"username": identity.Username,
				"group_id": identity.GroupId,
			})
			// Departure snapshot: no newUser field.
			h.broadcast(identity.GroupId, EventUpdateUsers, PresencePayload{
				OnlineUsers: h.registry.MembersOf(identity.GroupId),
			})
		}
	}
}

// dispatch validates the envelope and routes it. Called from the
// connection's read pump, so one connection's events run sequentially and a
// message is never broadcast out of persisted order for its sender.
func (h *Hub) dispatch(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.emitError(c, "invalid event payload")
		return
	}

	switch env.Event {
	case EventJoin:
		h.handleJoin(c, env.Data)
	case EventAddMessage:
		h.handleAddMessage(c, env.Data)
	case EventAddNotification:
		h.handleAddNotification(c, env.Data)
	case EventUpdateLocation:
		h.handleUpdateLocation(c, env.Data)
	case EventChatRead:
		h.handleCounterReset(c, env.Data, model.ChatCount, EventGetChatCount)
	case EventNotificationRead:
		h.handleCounterReset(c, env.Data, model.GroupCount, EventGetNotificationCount)
	case EventChatCount:
		h.handleCounterRead(c, env.Data, model.ChatCount, EventGetChatCount)
	case EventNotificationCount:
		h.handleCounterRead(c, env.Data, model.GroupCount, EventGetNotificationCount)
	default:
		h.emitError(c, "unknown event: "+env.Event)
	}
}

func (h *Hub) decode(data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}

// handleJoin binds the connection, announces presence to the room and then
// delivers history and counters to the joiner. The four retrieval steps are
// independent: each failure surfaces only as an error event to the joiner
// and never undoes the join.
func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var payload JoinPayload
	if err := h.decode(data, &payload); err != nil {
		h.emitError(c, "invalid join payload")
		return
	}

	if err := h.registry.Bind(c, payload.Username, payload.GroupId); err != nil {
		if errors.Is(err, ErrAlreadyBound) {
			h.emitError(c, "already joined a group")
			return
		}
		h.emitError(c, "failed to join group")
		return
	}

	ctx := context.Background()
	h.logger.Info("Hub", "Client joined room", map[string]interface{}{
		"username": payload.Username,
		"group_id": payload.GroupId,
	})

	// Make sure increments from other members can reach this user.
	if err := h.counters.Ensure(ctx, payload.GroupId, payload.Username); err != nil {
		h.logger.Error("Hub", "Failed to ensure counter row", map[string]interface{}{
			"username": payload.Username,
			"group_id": payload.GroupId,
			"error":    err.Error(),
		})
	}

	h.broadcast(payload.GroupId, EventUpdateUsers, PresencePayload{
		OnlineUsers: h.registry.MembersOf(payload.GroupId),
		NewUser:     payload.Username,
	})

	if messages, err := h.chat.History(ctx, payload.GroupId); err != nil {
		h.logger.Error("Hub", "Failed to retrieve messages", map[string]interface{}{"error": err.Error()})
		h.emitError(c, "Failed to retrieve messages")
	} else {
		if messages == nil {
			messages = []model.Message{}
		}
		h.sendTo(c, EventGetMessages, messages)
	}

	if count, err := h.counters.Read(ctx, payload.GroupId, payload.Username, model.ChatCount); err != nil {
		h.logger.Error("Hub", "Failed to retrieve chat count", map[string]interface{}{"error": err.Error()})
		h.emitError(c, "Failed to retrieve chat notification count")
	} else {
		h.sendTo(c, EventGetChatCount, count)
	}

	if notifications, err := h.notifications.List(ctx, payload.GroupId); err != nil {
		h.logger.Error("Hub", "Failed to retrieve group notifications", map[string]interface{}{"error": err.Error()})
		h.emitError(c, "Failed to retrieve group notifications")
	} else {
		if notifications == nil {
			notifications = []model.Notification{}
		}
		h.sendTo(c, EventGetNotifications, notifications)
	}

	if count, err := h.counters.Read(ctx, payload.GroupId, payload.Username, model.GroupCount); err != nil {
		h.logger.Error("Hub", "Failed to retrieve group notification count", map[string]interface{}{"error": err.Error()})
		h.emitError(c, "Failed to retrieve group notification count")
	} else {
		h.sendTo(c, EventGetNotificationCount, count)
	}
}

// handleAddMessage persists, bumps the other members' unread tallies and
// only then broadcasts the canonical stored copy, so every tab in the room
// renders the server-assigned id and timestamp.
func (h *Hub) handleAddMessage(c *Client, data json.RawMessage) {
	var payload AddMessagePayload
	if err := h.decode(data, &payload); err != nil {
		h.emitError(c, "invalid message payload")
		return
	}

	ctx := context.Background()
	message, err := h.chat.AddMessage(ctx, payload.Username, payload.Content, payload.GroupId)
	if err != nil {
		h.logger.Error("Hub", "Failed to add message", map[string]interface{}{
			"group_id": payload.GroupId,
			"error":    err.Error(),
		})
		h.emitError(c, "Failed to add message")
		return
	}

	if err := h.counters.Increment(ctx, payload.GroupId, payload.Username, model.ChatCount); err != nil {
		h.logger.Error("Hub", "Failed to increment chat counters", map[string]interface{}{
			"group_id": payload.GroupId,
			"error":    err.Error(),
		})
		h.emitError(c, "Failed to add message")
		return
	}

	h.broadcast(message.GroupId, EventNewMessage, message)
	h.activity.PublishActivity(message.GroupId)
}

func (h *Hub) handleAddNotification(c *Client, data json.RawMessage) {
	var payload AddNotificationPayload
	if err := h.decode(data, &payload); err != nil {
		h.emitError(c, "invalid notification payload")
		return
	}

	ctx := context.Background()
	notification, err := h.notifications.Add(ctx, payload.GroupId, payload.Title, payload.Description)
	if err != nil {
		h.logger.Error("Hub", "Failed to add group notification", map[string]interface{}{
			"group_id": payload.GroupId,
			"error":    err.Error(),
		})
		h.emitError(c, "Failed to add group notification")
		return
	}

	if err := h.counters.Increment(ctx, payload.GroupId, payload.Username, model.GroupCount); err != nil {
		h.logger.Error("Hub", "Failed to increment group counters", map[string]interface{}{
			"group_id": payload.GroupId,
			"error":    err.Error(),
		})
		h.emitError(c, "Failed to add group notification")
		return
	}

	h.broadcast(notification.GroupId, EventNewNotification, notification)
	h.activity.PublishActivity(notification.GroupId)
}

// handleUpdateLocation fails silently on collaborator checks: logged, no
// broadcast, nothing sent back.
func (h *Hub) handleUpdateLocation(c *Client, data json.RawMessage) {
	var payload UpdateLocationPayload
	if err := h.decode(data, &payload); err != nil {
		h.emitError(c, "invalid location payload")
		return
	}

	location, err := h.locations.Update(context.Background(), payload.Username, payload.Coordinates, payload.GroupId)
	if err != nil {
		// Unknown user or group stays silent; only storage failures go
		// back to the sender.
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrGroupNotFound) {
			h.logger.Warn("Hub", "Location update rejected", map[string]interface{}{
				"username": payload.Username,
				"group_id": payload.GroupId,
				"error":    err.Error(),
			})
			return
		}
		h.logger.Error("Hub", "Failed to update location", map[string]interface{}{
			"username": payload.Username,
			"group_id": payload.GroupId,
			"error":    err.Error(),
		})
		h.emitError(c, "Failed to update location")
		return
	}

	h.broadcast(payload.GroupId, EventNewLocation, LocationPayload{
		Id:          location.Id.String(),
		Username:    location.Username,
		Coordinates: location.Coordinates,
		GroupId:     payload.GroupId,
	})
}

func (h *Hub) handleCounterReset(c *Client, data json.RawMessage, kind model.CounterKind, replyEvent string) {
	var payload CounterPayload
	if err := h.decode(data, &payload); err != nil {
		h.emitError(c, "invalid counter payload")
		return
	}

	count, err := h.counters.Reset(context.Background(), payload.GroupId, payload.Username, kind)
	if err != nil {
		h.logger.Error("Hub", "Failed to reset counter", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
		h.emitError(c, "Failed to reset notification count")
		return
	}
	h.sendTo(c, replyEvent, count)
}

func (h *Hub) handleCounterRead(c *Client, data json.RawMessage, kind model.CounterKind, replyEvent string) {
	var payload CounterPayload
	if err := h.decode(data, &payload); err != nil {
		h.emitError(c, "invalid counter payload")
		return
	}

	count, err := h.counters.Read(context.Background(), payload.GroupId, payload.Username, kind)
	if err != nil {
		h.logger.Error("Hub", "Failed to read counter", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
		h.emitError(c, "Failed to retrieve notification count")
		return
	}
	h.sendTo(c, replyEvent, count)
}

// broadcast fans one event out to every connection currently in the room,
// and relays it to sibling hub instances through Redis.
func (h *Hub) broadcast(groupId, event string, payload interface{}) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode broadcast", map[string]interface{}{
			"event": event,
			"error": err.Error(),
		})
		return
	}

	h.deliverLocal(groupId, frame)

	if h.rdb != nil {
		relay, err := json.Marshal(roomRelay{
			Origin:  h.instanceId,
			GroupId: groupId,
			Frame:   frame,
		})
		if err != nil {
			return
		}
		if err := h.rdb.Publish(context.Background(), redisChannel, relay).Err(); err != nil {
			h.logger.Warn("Hub", "Redis relay publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(groupId string, frame []byte) {
	for _, client := range h.registry.ClientsIn(groupId) {
		// Full buffer means a dead or hopeless client; a dropped frame
		// must never block the rest of the room. The hub loop does the
		// actual close, so this is safe from any goroutine.
		if !client.trySend(frame) {
			h.logger.Warn("Hub", "Send buffer full, dropping client", map[string]interface{}{"group_id": groupId})
			go func(dead *Client) { h.unregister <- dead }(client)
		}
	}
}

// sendTo delivers one event to a single connection.
func (h *Hub) sendTo(c *Client, event string, payload interface{}) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode event", map[string]interface{}{
			"event": event,
			"error": err.Error(),
		})
		return
	}
	if !c.trySend(frame) {
		go func() { h.unregister <- c }()
	}
}

// emitError reports a handler failure to the acting connection only; other
// room members never see it.
func (h *Hub) emitError(c *Client, message string) {
	h.sendTo(c, EventError, message)
}

// roomRelay is the payload exchanged between hub instances over Redis.
type roomRelay struct {
	Origin  string          `json:"origin"`
	GroupId string          `json:"group_id"`
	Frame   json.RawMessage `json:"frame"`
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var relay roomRelay
		if err := json.Unmarshal([]byte(msg.Payload), &relay); err != nil {
			h.logger.Warn("Hub", "Bad relay payload", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Local members already got this frame from the originating hub.
		if relay.Origin == h.instanceId {
			continue
		}
		h.deliverLocal(relay.GroupId, relay.Frame)
	}
}
