/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package clan

// Authorizer answers privilege questions from the home clan's rank
// directory. Pure reads of directory state at call time; ranks changed in
// the directory take effect on the next check with no caching in between.
type Authorizer struct {
	dir *Directory
}

func NewAuthorizer(dir *Directory) *Authorizer {
	return &Authorizer{dir: dir}
}

// IsAdmin reports whether player holds Officer rank or better in the home
// clan. False when no home clan is registered.
func (a *Authorizer) IsAdmin(player string) bool {
	home := a.dir.Home()
	if home == nil {
		return false
	}

	return home.GetRank(player) >= RankOfficer
}

// IsOwner reports whether player is the home clan's owner.
func (a *Authorizer) IsOwner(player string) bool {
	home := a.dir.Home()
	if home == nil {
		return false
	}

	return home.GetRank(player) == RankOwner
}
