/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pug

import "fmt"

// State is a pug's position in its lifecycle. Transitions only move
// forward: Gathering -> Voting -> Assigned -> InProgress -> Over, except
// that a manual end jumps straight to Over from any state. Over is
// terminal; an Over pug is dropped from its manager's active set.
type State int

const (
	StateGathering State = iota
	StateVoting
	StateAssigned
	StateInProgress
	StateOver
)

func (s State) String() string {
	switch s {
	case StateGathering:
		return "gathering"
	case StateVoting:
		return "voting"
	case StateAssigned:
		return "assigned"
	case StateInProgress:
		return "in progress"
	case StateOver:
		return "over"
	}

	return "?"
}

// Pug sizes are a fixed set; anything else is rejected at creation time.
const (
	DefaultSize = 12
	LargeSize   = 18
)

func validSize(size int) bool {
	return size == DefaultSize || size == LargeSize
}

// ServerInfo holds the connection details handed out once a game server
// has been allocated for a pug.
type ServerInfo struct {
	Addr          string
	Port          int
	Password      string
	AdminPassword string
}

// ConnectString renders the console command players paste to join.
func (si ServerInfo) ConnectString() string {
	return fmt.Sprintf("connect %v:%v; password %v", si.Addr, si.Port, si.Password)
}

// Pug is a single queue instance: the ordered roster of players who have
// joined, the declared capacity, the lifecycle state, and the embedded map
// vote. A Pug performs no locking of its own; its owning Manager
// serializes all access.
type Pug struct {
	id       int64
	capacity int
	state    State

	// roster order is join order; roster[0] is the starter
	roster []string

	vote   *MapVote
	winner GameMap

	server    ServerInfo
	hasServer bool

	teamRed  []string
	teamBlue []string
}

// NewPug creates a pug in the Gathering state. id is the creation
// timestamp in unix seconds; uniqueness across pugs is the caller's
// responsibility.
func NewPug(id int64, capacity int, voteDuration int64) (*Pug, error) {
	if !validSize(capacity) {
		return nil, ErrInvalidSize
	}

	return &Pug{
		id:       id,
		capacity: capacity,
		state:    StateGathering,
		vote:     NewMapVote(voteDuration),
	}, nil
}

func (p *Pug) ID() int64 {
	return p.id
}

func (p *Pug) Capacity() int {
	return p.capacity
}

func (p *Pug) State() State {
	return p.state
}

// Starter is the player who created the pug (first roster entry). Empty
// string if the roster is somehow empty.
func (p *Pug) Starter() string {
	if len(p.roster) == 0 {
		return ""
	}

	return p.roster[0]
}

// Roster returns a copy of the join-ordered roster.
func (p *Pug) Roster() []string {
	out := make([]string, len(p.roster))
	copy(out, p.roster)

	return out
}

func (p *Pug) Has(player string) bool {
	for _, id := range p.roster {
		if id == player {
			return true
		}
	}

	return false
}

func (p *Pug) Full() bool {
	return len(p.roster) == p.capacity
}

// Add appends player to the roster. Only valid while Gathering with room
// left; duplicates are rejected.
func (p *Pug) Add(player string) error {
	if p.state != StateGathering {
		return ErrNotGathering
	}
	if len(p.roster) >= p.capacity {
		return ErrPugFull
	}
	if p.Has(player) {
		return ErrAlreadyInPug
	}

	p.roster = append(p.roster, player)

	return nil
}

// Remove deletes player from the roster, reporting whether they were
// present. Order of the remaining players is preserved.
func (p *Pug) Remove(player string) bool {
	for i, id := range p.roster {
		if id == player {
			p.roster = append(p.roster[:i], p.roster[i+1:]...)
			return true
		}
	}

	return false
}

// VoteInProgress reports whether the map vote window is open.
func (p *Pug) VoteInProgress() bool {
	return p.state == StateVoting
}

// StartMapVote opens the map vote and moves the pug to Voting. It is only
// valid from Gathering with a full roster; calling it again once voting
// has begun (or later) is a no-op. Returns whether the vote was started by
// this call.
func (p *Pug) StartMapVote(now int64) bool {
	if p.state != StateGathering || !p.Full() {
		return false
	}

	p.vote.Open(now)
	p.state = StateVoting

	return true
}

func (p *Pug) Vote() *MapVote {
	return p.vote
}

// ResolveVote closes the ballot box and records the winning map,
// substituting DefaultMap when no ballots were cast. Only valid while
// Voting; the pug stays in Voting until a server is assigned.
func (p *Pug) ResolveVote() (GameMap, error) {
	if p.state != StateVoting {
		return MapNone, ErrVoteNotOpen
	}

	winner := p.vote.Resolve()
	if winner == MapNone {
		winner = DefaultMap
	}
	p.winner = winner

	return winner, nil
}

// WinningMap returns MapNone until the vote has resolved.
func (p *Pug) WinningMap() GameMap {
	return p.winner
}

// AssignServer attaches connection details and moves the pug to Assigned.
func (p *Pug) AssignServer(info ServerInfo) {
	p.server = info
	p.hasServer = true
	p.state = StateAssigned
}

// Server returns the assigned connection details, if any.
func (p *Pug) Server() (ServerInfo, bool) {
	return p.server, p.hasServer
}

// MarkDetailsSent moves an Assigned pug to InProgress once every player
// has been sent the server details.
func (p *Pug) MarkDetailsSent() {
	if p.state == StateAssigned {
		p.state = StateInProgress
	}
}

// End moves the pug to its terminal state. Safe to call from any state.
func (p *Pug) End() {
	p.state = StateOver
}

// SplitTeams fills the red and blue teams by strict positional order: the
// first half of the roster is RED, the second half BLUE. The roster must
// be exactly at capacity; anything else is a caller bug, so the split
// refuses rather than producing lopsided teams.
func (p *Pug) SplitTeams() error {
	if len(p.roster) != p.capacity || p.capacity%2 != 0 {
		return ErrRosterNotFull
	}

	half := p.capacity / 2
	p.teamRed = append([]string(nil), p.roster[:half]...)
	p.teamBlue = append([]string(nil), p.roster[half:]...)

	return nil
}

func (p *Pug) TeamRed() []string {
	return append([]string(nil), p.teamRed...)
}

func (p *Pug) TeamBlue() []string {
	return append([]string(nil), p.teamBlue...)
}

// SlotsRemaining renders the open-slot count for chat announcements.
func (p *Pug) SlotsRemaining() string {
	return fmt.Sprintf("%v/%v slots remaining", p.capacity-len(p.roster), p.capacity)
}

// StatusMessage renders a one-line human readable summary of the pug's
// current state.
func (p *Pug) StatusMessage() string {
	switch p.state {
	case StateGathering:
		return fmt.Sprintf("Gathering players. (%v)", p.SlotsRemaining())
	case StateVoting:
		return "Map voting currently in progress"
	case StateAssigned:
		return "A server has been assigned. Details are being sent"
	case StateInProgress:
		return "The game has started"
	case StateOver:
		return "The game is over"
	}

	return "Unknown"
}
