package session

import "encoding/json"

// Inbound event names (client -> hub). These match the wire protocol the
// web client speaks.
const (
	EventJoin              = "join"
	EventAddMessage        = "add message"
	EventUpdateLocation    = "update location"
	EventChatRead          = "chat read"
	EventChatCount         = "update chat notification count"
	EventAddNotification   = "add group notification"
	EventNotificationRead  = "group notification read"
	EventNotificationCount = "update group notification count"
)

// Outbound event names (hub -> clients).
const (
	EventGetMessages          = "get messages"
	EventGetChatCount         = "get chat notification count"
	EventGetNotifications     = "get group notifications"
	EventGetNotificationCount = "get group notification count"
	EventUpdateUsers          = "updateUsers"
	EventNewMessage           = "new message"
	EventNewLocation          = "new location"
	EventNewNotification      = "new group notification"
	EventError                = "error"
)

// Envelope is the wire frame: an event name plus a JSON payload. Inbound
// payloads are decoded into the typed structs below and validated before
// any handler runs.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	Username string `json:"username" validate:"required"`
	GroupId  string `json:"group_id" validate:"required"`
}

type AddMessagePayload struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required"`
	GroupId  string `json:"group_id" validate:"required"`
}

type UpdateLocationPayload struct {
	Username    string    `json:"username" validate:"required"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	GroupId     string    `json:"group_id" validate:"required"`
}

// CounterPayload covers the four read/reset counter events.
type CounterPayload struct {
	GroupId  string `json:"group_id" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type AddNotificationPayload struct {
	Username    string `json:"username" validate:"required"`
	GroupId     string `json:"group_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// PresencePayload is the room snapshot broadcast on join and leave. NewUser
// is set on arrivals only.
type PresencePayload struct {
	OnlineUsers []string `json:"onlineUsers"`
	NewUser     string   `json:"newUser,omitempty"`
}

// LocationPayload is the broadcast shape for location updates; the stored
// row has no group column, so the room is carried alongside.
type LocationPayload struct {
	Id          string    `json:"id"`
	Username    string    `json:"username"`
	Coordinates []float64 `json:"coordinates"`
	GroupId     string    `json:"group_id"`
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: payload})
}
