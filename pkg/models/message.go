package models

import "time"

// ClientMessageType identifies inbound websocket messages
type ClientMessageType string

const (
	MessageTypeSubscribe   ClientMessageType = "subscribe"
	MessageTypeUnsubscribe ClientMessageType = "unsubscribe"
	MessageTypeHeartbeat   ClientMessageType = "heartbeat"
)

// ClientMessage is a message received from a websocket client
type ClientMessage struct {
	Type    ClientMessageType      `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage is a message pushed to a websocket client
type ServerMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SubscriptionFilter restricts which match events a client receives.
// Empty filter means all matches.
type SubscriptionFilter struct {
	Matches []string `json:"matches,omitempty"`
	Teams   []string `json:"teams,omitempty"`
}

// ErrorResponse is the JSON error body returned by the REST API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ErrorMessage is an error payload pushed to a websocket client
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStats reports per-client websocket statistics
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"`
}
