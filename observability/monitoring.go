// Package observability aggregates runtime counters for logging and
// inspection. Counters are atomic; reading a snapshot never blocks the
// hot path.
package observability

import (
	"sync/atomic"
)

// Stats is a point-in-time snapshot of the chat runtime.
type Stats struct {
	MessagesStored   uint64 `json:"messages_stored"`
	Delivered        uint64 `json:"delivered"`
	DeliveryDropped  uint64 `json:"delivery_dropped"`
	ReadReceipts     uint64 `json:"read_receipts"`
	ConnectedUsers   int    `json:"connected_users"`
	ConversationsNew uint64 `json:"conversations_created"`
}

// ConnectedCounter decouples the monitor from the registry implementation.
type ConnectedCounter interface {
	Connected() int
}

type Monitor struct {
	messagesStored   atomic.Uint64
	delivered        atomic.Uint64
	deliveryDropped  atomic.Uint64
	readReceipts     atomic.Uint64
	conversationsNew atomic.Uint64

	connected ConnectedCounter
}

func NewMonitor(connected ConnectedCounter) *Monitor {
	return &Monitor{connected: connected}
}

func (m *Monitor) IncrMessagesStored()       { m.messagesStored.Add(1) }
func (m *Monitor) IncrDelivered()            { m.delivered.Add(1) }
func (m *Monitor) IncrDeliveryDropped()      { m.deliveryDropped.Add(1) }
func (m *Monitor) IncrReadReceipts()         { m.readReceipts.Add(1) }
func (m *Monitor) IncrConversationsCreated() { m.conversationsNew.Add(1) }

// Snapshot reads every counter without locking.
func (m *Monitor) Snapshot() Stats {
	stats := Stats{
		MessagesStored:   m.messagesStored.Load(),
		Delivered:        m.delivered.Load(),
		DeliveryDropped:  m.deliveryDropped.Load(),
		ReadReceipts:     m.readReceipts.Load(),
		ConversationsNew: m.conversationsNew.Load(),
	}
	if m.connected != nil {
		stats.ConnectedUsers = m.connected.Connected()
	}
	return stats
}
