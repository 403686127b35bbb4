/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package clan

import (
	"fmt"
	"sync"
)

// Directory is the registry of clans the bot knows about. Exactly one of
// them is the distinguished home clan whose ranks gate privileged
// commands; other registered clans are tracked but never grant rights.
//
// Identifiers passed in are treated as immutable: resolving a chat-room
// identifier to its clan produces a lookup against stored values and never
// rewrites the input.
type Directory struct {
	mu sync.RWMutex

	clans  []*Clan
	homeID string
}

func NewDirectory() *Directory {
	return &Directory{}
}

// Add registers a clan and its chat room. The first clan added becomes the
// home clan unless SetHome overrides it.
func (d *Directory) Add(id string, roomID string) (*Clan, error) {
	if id == "" {
		return nil, fmt.Errorf("clan: empty clan id")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lookup(id) != nil {
		return nil, fmt.Errorf("clan: %v already registered", id)
	}

	c := New(id, roomID)
	d.clans = append(d.clans, c)
	if d.homeID == "" {
		d.homeID = id
	}

	return c, nil
}

func (d *Directory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, c := range d.clans {
		if c.ID() == id {
			d.clans = append(d.clans[:i], d.clans[i+1:]...)
			return
		}
	}
}

// SetHome designates which registered clan is authoritative for
// authorization.
func (d *Directory) SetHome(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lookup(id) == nil {
		return fmt.Errorf("clan: %v is not registered", id)
	}
	d.homeID = id

	return nil
}

// Home returns the distinguished home clan, nil if none registered.
func (d *Directory) Home() *Clan {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.lookup(d.homeID)
}

// Resolve canonicalizes id, which may name either a clan or that clan's
// chat room, to the clan itself. Returns nil when neither form matches.
func (d *Directory) Resolve(id string) *Clan {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.lookup(id)
}

// NormalizeID maps an identifier that may name either a clan or its chat
// room to the canonical clan id. The input is never modified; unknown
// identifiers come back unchanged with ok false.
func (d *Directory) NormalizeID(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c := d.lookup(id)
	if c == nil {
		return id, false
	}

	return c.ID(), true
}

func (d *Directory) lookup(id string) *Clan {
	for _, c := range d.clans {
		if c.ID() == id {
			return c
		}
	}
	for _, c := range d.clans {
		if c.RoomID() != "" && c.RoomID() == id {
			return c
		}
	}

	return nil
}
