// Package events provides the in-process event bus used to fan out store
// change notifications to streaming clients.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	ItemsChanged    EventType = "ITEMS_CHANGED"
	AccountsChanged EventType = "ACCOUNTS_CHANGED"
	BackupCompleted EventType = "BACKUP_COMPLETED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
