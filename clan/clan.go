/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package clan

import (
	"sort"
	"sync"
)

// Clan tracks membership information for one reference group: each known
// member's rank, and the set of users currently present in the clan's
// associated chat room. Pure bookkeeping, no I/O; safe for use from
// concurrent gateway event callbacks.
type Clan struct {
	mu sync.RWMutex

	id     string
	roomID string

	members map[string]Rank
	room    map[string]struct{}
}

func New(id string, roomID string) *Clan {
	return &Clan{
		id:      id,
		roomID:  roomID,
		members: make(map[string]Rank),
		room:    make(map[string]struct{}),
	}
}

func (c *Clan) ID() string {
	return c.id
}

// RoomID is the identifier of the clan's chat room. Distinct from the clan
// id itself; Directory.Resolve accepts either.
func (c *Clan) RoomID() string {
	return c.roomID
}

// SetRank upserts a member's rank, last write wins. Unknown players are
// created rather than rejected.
func (c *Clan) SetRank(player string, rank Rank) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.members[player] = rank
}

// GetRank returns a member's rank, RankNone for anyone not on the roster.
func (c *Clan) GetRank(player string) Rank {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.members[player]
}

func (c *Clan) RemoveMember(player string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.members, player)
}

// Members returns the known members in a stable order for listing.
func (c *Clan) Members() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.members))
	for id := range c.members {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// AddToRoom marks a user present in the clan chat room. Idempotent.
func (c *Clan) AddToRoom(player string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.room[player] = struct{}{}
}

// RemoveFromRoom marks a user absent. Idempotent.
func (c *Clan) RemoveFromRoom(player string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.room, player)
}

func (c *Clan) InRoom(player string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.room[player]
	return ok
}
