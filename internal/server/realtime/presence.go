package realtime

import "sync"

// Member is one present user as shown to clients.
type Member struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PresenceEvent is broadcast on the presence concern whenever a vault's
// set of connected users changes, and sent directly to a client on
// connect (Type "sync").
type PresenceEvent struct {
	Type    string   `json:"type"` // join, leave or sync
	Member  *Member  `json:"member,omitempty"`
	Members []Member `json:"members,omitempty"`
}

type presenceEntry struct {
	email string
	conns int
}

// Presence tracks which users hold open connections per vault. A user
// with several tabs counts once; join/leave events fire only on the
// first and last connection.
type Presence struct {
	hub *Hub

	mu     sync.Mutex
	vaults map[string]map[string]*presenceEntry // vaultID -> userID -> entry
}

func NewPresence(hub *Hub) *Presence {
	return &Presence{hub: hub, vaults: make(map[string]map[string]*presenceEntry)}
}

// Track registers a connection for the user and broadcasts a join event
// if this is the user's first connection to the vault.
func (p *Presence) Track(vaultID, userID, email string) {
	p.mu.Lock()
	users := p.vaults[vaultID]
	if users == nil {
		users = make(map[string]*presenceEntry)
		p.vaults[vaultID] = users
	}
	e := users[userID]
	if e == nil {
		e = &presenceEntry{email: email}
		users[userID] = e
	}
	e.conns++
	first := e.conns == 1
	p.mu.Unlock()

	if first {
		p.hub.Publish(vaultID, ConcernPresence, PresenceEvent{
			Type:   "join",
			Member: &Member{UserID: userID, Email: email},
		})
	}
}

// Untrack drops a connection and broadcasts a leave event when the user's
// last connection to the vault goes away.
func (p *Presence) Untrack(vaultID, userID string) {
	p.mu.Lock()
	users := p.vaults[vaultID]
	e := users[userID]
	var email string
	last := false
	if e != nil {
		e.conns--
		if e.conns <= 0 {
			email = e.email
			last = true
			delete(users, userID)
			if len(users) == 0 {
				delete(p.vaults, vaultID)
			}
		}
	}
	p.mu.Unlock()

	if last {
		p.hub.Publish(vaultID, ConcernPresence, PresenceEvent{
			Type:   "leave",
			Member: &Member{UserID: userID, Email: email},
		})
	}
}

// Snapshot returns the vault's currently present users, for the sync
// event a client receives right after connecting.
func (p *Presence) Snapshot(vaultID string) []Member {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := p.vaults[vaultID]
	members := make([]Member, 0, len(users))
	for userID, e := range users {
		members = append(members, Member{UserID: userID, Email: e.email})
	}
	return members
}
