/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pug

import "errors"

// Rejections below are expected, user-facing outcomes rather than defects;
// callers turn them into chat replies instead of logging them as failures.
var (
	ErrAlreadyInPug    = errors.New("you're already in a pug")
	ErrInvalidSize     = errors.New("invalid pug size specified; must be 12 or 18")
	ErrPugFull         = errors.New("pug is already full")
	ErrNotGathering    = errors.New("pug is no longer gathering players")
	ErrNoPug           = errors.New("not currently in a pug")
	ErrNoSuchPug       = errors.New("no pug with that id")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrVoteNotOpen     = errors.New("no map vote in progress")
	ErrRosterNotFull   = errors.New("roster is not full")
	ErrNoServerDetails = errors.New("server details are not available yet")
)
