/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pug

import "strings"

// GameMap is one entry in the fixed rotation of maps a pug can be played
// on. The declaration order is canonical: it is the order maps are listed
// in for players, and the order used to break ties when a vote resolves.
// Adding a map here is a deliberate schema change, not a runtime event.
type GameMap int

const (
	MapNone GameMap = iota
	MapGranary
	MapWell
	MapBadlands
)

// DefaultMap is substituted when a vote closes with no ballots cast.
const DefaultMap = MapGranary

var mapNames = map[GameMap]string{
	MapGranary:  "cp_granary",
	MapWell:     "cp_well",
	MapBadlands: "cp_badlands",
}

func (m GameMap) String() string {
	if name, ok := mapNames[m]; ok {
		return name
	}
	return "none"
}

// Maps returns the votable maps in canonical order, excluding the MapNone
// sentinel.
func Maps() []GameMap {
	return []GameMap{MapGranary, MapWell, MapBadlands}
}

// MapsAsString renders the votable map list for display in chat.
func MapsAsString() string {
	names := make([]string, 0, len(Maps()))
	for _, m := range Maps() {
		names = append(names, m.String())
	}

	return strings.Join(names, " - ")
}

// ParseMap resolves a player-supplied map name to its GameMap value. The
// match is case-insensitive but otherwise exact; anything unrecognized
// returns (MapNone, false).
func ParseMap(name string) (GameMap, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range Maps() {
		if m.String() == name {
			return m, true
		}
	}

	return MapNone, false
}
