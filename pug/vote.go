/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pug

// DefaultVoteDuration is how long a map vote stays open, in seconds.
const DefaultVoteDuration int64 = 60

// MapVote is the ballot box for a single pug's map vote. Each player holds
// at most one ballot; recasting moves that ballot rather than adding a
// second one. The per-map tally is maintained incrementally on every cast
// so that resolution is O(maps) rather than O(voters) and a mid-window
// read always sees a consistent snapshot.
type MapVote struct {
	ballots map[string]GameMap
	tally   map[GameMap]int

	startedAt int64
	duration  int64
}

func NewMapVote(duration int64) *MapVote {
	if duration <= 0 {
		duration = DefaultVoteDuration
	}

	return &MapVote{
		ballots:  make(map[string]GameMap),
		tally:    make(map[GameMap]int),
		duration: duration,
	}
}

// Open resets any prior ballots and starts the voting window at now (unix
// seconds).
func (v *MapVote) Open(now int64) {
	v.ballots = make(map[string]GameMap)
	v.tally = make(map[GameMap]int)
	v.startedAt = now
}

// Cast records player's ballot for m. A first-time voter adds one to m's
// tally; a revote moves one unit from the previously chosen map to m. The
// decrement clamps at zero so a tally can never go negative.
func (v *MapVote) Cast(player string, m GameMap) {
	prev, voted := v.ballots[player]
	if voted {
		if prev == m {
			return
		}
		if v.tally[prev] > 0 {
			v.tally[prev]--
		}
	}

	v.ballots[player] = m
	v.tally[m]++
}

// Expired reports whether the voting window has elapsed as of now.
func (v *MapVote) Expired(now int64) bool {
	return now-v.startedAt > v.duration
}

// Resolve returns the map with the highest tally. Ties are broken by
// canonical map order (the first of the maps sharing the maximum), not by
// the order votes arrived in. An empty ballot box resolves to MapNone; the
// caller is responsible for substituting DefaultMap.
func (v *MapVote) Resolve() GameMap {
	if len(v.ballots) == 0 {
		return MapNone
	}

	winner := MapNone
	best := 0
	for _, m := range Maps() {
		if v.tally[m] > best {
			winner = m
			best = v.tally[m]
		}
	}

	return winner
}

// CountFor returns the current tally for m, 0 if no one has voted for it.
func (v *MapVote) CountFor(m GameMap) int {
	return v.tally[m]
}

// BallotCount returns the number of players who currently hold a ballot.
func (v *MapVote) BallotCount() int {
	return len(v.ballots)
}
