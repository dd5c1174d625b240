// Package events contains the WebSocket message contracts pushed to viewer
// clients.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDatasetReloaded announces a new dataset snapshot.
	MessageTypeDatasetReloaded MessageType = "dataset_reloaded"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetReloaded is the payload of a dataset_reloaded message.
type DatasetReloaded struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Sheets   []string  `json:"sheets"`
	Rows     int       `json:"rows"`
	Warnings []string  `json:"warnings,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
