package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeSlots subscribes to slot updates.
	SubscribeSlots(ctx context.Context) (<-chan SlotNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SlotNotification represents a slotSubscribe message.
type SlotNotification struct {
	Slot   int64
	Parent int64
	Root   int64
}
