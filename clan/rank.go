/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package clan

// Rank is a member's privilege level within a clan. Levels are ordered;
// Officer and above may run privileged bot commands.
type Rank int

const (
	RankNone Rank = iota
	RankMember
	RankOfficer
	RankOwner
)

func (r Rank) String() string {
	switch r {
	case RankNone:
		return "none"
	case RankMember:
		return "member"
	case RankOfficer:
		return "officer"
	case RankOwner:
		return "owner"
	}

	return "?"
}
