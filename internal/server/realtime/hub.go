// Package realtime distributes change and presence events to connected
// clients. Channels are scoped per vault and concern, so a subscriber
// only sees traffic for vaults it has opened.
package realtime

import (
	"sync"
)

// Concerns a vault channel can carry.
const (
	ConcernSources  = "sources"
	ConcernMembers  = "members"
	ConcernPresence = "presence"
)

// Message is what subscribers receive. Payload is already shaped for the
// wire (a models.ChangeEvent or a presence payload).
type Message struct {
	Concern string `json:"concern"`
	Payload any    `json:"payload"`
}

const subscriberBuffer = 16

// Subscription is one client's attachment to a vault's channels. Events
// arrive on C until Unsubscribe; a slow consumer loses events rather than
// blocking the hub, the client is expected to resync.
type Subscription struct {
	C       chan Message
	vaultID string
}

// Hub is an in-process fan-out of vault events. All methods are safe for
// concurrent use.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{} // vaultID -> subscriptions
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe attaches to all of the vault's channels.
func (h *Hub) Subscribe(vaultID string) *Subscription {
	sub := &Subscription{
		C:       make(chan Message, subscriberBuffer),
		vaultID: vaultID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[vaultID] == nil {
		h.subs[vaultID] = make(map[*Subscription]struct{})
	}
	h.subs[vaultID][sub] = struct{}{}
	return sub
}

// Unsubscribe detaches the subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.subs[sub.vaultID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.vaultID)
	}
	close(sub.C)
}

// Publish delivers the payload to every subscriber of the vault. Sends
// never block: a full subscriber buffer drops the message.
func (h *Hub) Publish(vaultID, concern string, payload any) {
	msg := Message{Concern: concern, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[vaultID] {
		select {
		case sub.C <- msg:
		default:
		}
	}
}

// SubscriberCount reports how many subscriptions the vault currently has.
func (h *Hub) SubscriberCount(vaultID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[vaultID])
}
