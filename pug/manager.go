/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pug

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Notifier delivers user-facing text either to the shared pug room or
// directly to one player. The manager never formats transport specifics;
// it only emits plain text.
type Notifier interface {
	Room(msg string)
	Direct(player string, msg string)
}

// Namer resolves a player identifier to a human readable display name.
type Namer interface {
	DisplayName(player string) string
}

// Allocator reserves a game server for a pug and releases it afterwards.
// Release must be safe to call for a pug that was never allocated.
type Allocator interface {
	Allocate(ctx context.Context, pugID int64) (ServerInfo, error)
	Release(ctx context.Context, pugID int64) error
}

// Summary describes a finished pug for history recording.
type Summary struct {
	PugID     int64
	Capacity  int
	Map       string
	Players   []string
	CreatedAt int64
	EndedAt   int64
}

// Recorder persists a Summary for a pug that reached a server assignment
// or was manually ended. Recording is best effort; failures never block
// the engine.
type Recorder interface {
	Record(ctx context.Context, sum Summary) error
}

// Manager owns the set of active pugs. It routes joins and leaves to the
// right pug, creates new ones when none have room, drives lifecycle
// transitions, and polls vote windows for expiry via Tick. Every mutating
// entry point takes the manager lock, so the engine behaves as if commands
// were processed one at a time even under discordgo's concurrent event
// callbacks. Time never comes from the clock here; callers pass unix
// seconds explicitly.
type Manager struct {
	mu sync.Mutex

	notifier Notifier
	namer    Namer
	alloc    Allocator
	recorder Recorder
	log      zerolog.Logger

	voteDuration int64

	// creation order; also the order join requests probe for room
	pugs []*Pug

	lastID int64
}

func NewManager(notifier Notifier, namer Namer, alloc Allocator,
	recorder Recorder, voteDuration int64, log zerolog.Logger) *Manager {

	if voteDuration <= 0 {
		voteDuration = DefaultVoteDuration
	}

	return &Manager{
		notifier:     notifier,
		namer:        namer,
		alloc:        alloc,
		recorder:     recorder,
		voteDuration: voteDuration,
		log:          log,
	}
}

// nextID derives a creation-timestamp id, bumping past the previous one if
// two pugs are created within the same second.
func (mgr *Manager) nextID(now int64) int64 {
	id := now
	if id <= mgr.lastID {
		id = mgr.lastID + 1
	}
	mgr.lastID = id

	return id
}

// AddPlayer adds player to the first pug with room, creating a new
// default-size pug when none have any. Rejected with a direct message if
// the player is already in any active pug. Filling the last slot starts
// the map vote.
func (mgr *Manager) AddPlayer(ctx context.Context, player string, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.playerPug(player) != nil {
		mgr.notifier.Direct(player, "You're already in a pug")
		return ErrAlreadyInPug
	}

	target := mgr.spaceAvailable()
	if target == nil {
		return mgr.createPug(player, DefaultSize, now)
	}

	if err := target.Add(player); err != nil {
		mgr.log.Warn().Err(err).Int64("pug", target.ID()).
			Str("player", player).Msg("join rejected")
		return err
	}

	mgr.notifier.Room(fmt.Sprintf("%v has joined pug %v (%v)",
		mgr.namer.DisplayName(player), target.ID(), target.SlotsRemaining()))

	if target.Full() {
		mgr.notifier.Room(fmt.Sprintf("Pug %v is now full. Players: %v",
			target.ID(), mgr.playerList(target)))
		mgr.startMapVote(target, now)
	}

	return nil
}

// RemovePlayer takes player out of their current pug. A no-op for players
// not in any pug; rejected once the pug has locked its roster for voting.
func (mgr *Manager) RemovePlayer(player string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p := mgr.playerPug(player)
	if p == nil {
		return ErrNoPug
	}
	if p.State() != StateGathering {
		mgr.notifier.Direct(player, "Your pug has already locked its roster")
		return ErrNotGathering
	}

	p.Remove(player)
	mgr.notifier.Room(fmt.Sprintf("%v has left pug %v. (%v)",
		mgr.namer.DisplayName(player), p.ID(), p.SlotsRemaining()))

	return nil
}

// CreatePug starts a fresh pug of the given size with player as its
// starter. Size must be one of the allowed pug sizes.
func (mgr *Manager) CreatePug(ctx context.Context, player string, size int, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.playerPug(player) != nil {
		mgr.notifier.Direct(player, "You're already in a pug")
		return ErrAlreadyInPug
	}
	if !validSize(size) {
		mgr.notifier.Direct(player, "Invalid pug size specified. Must be 12 or 18")
		return ErrInvalidSize
	}

	return mgr.createPug(player, size, now)
}

func (mgr *Manager) createPug(player string, size int, now int64) error {
	p, err := NewPug(mgr.nextID(now), size, mgr.voteDuration)
	if err != nil {
		return err
	}
	if err := p.Add(player); err != nil {
		return err
	}

	mgr.pugs = append(mgr.pugs, p)

	mgr.log.Info().Int64("pug", p.ID()).Int("size", size).
		Str("starter", player).Msg("pug created")
	mgr.notifier.Room(fmt.Sprintf(
		"A %v player pug has been started by %v. Pug ID: %v. Type !j to join",
		p.Capacity(), mgr.namer.DisplayName(player), p.ID()))

	return nil
}

// VoteMap casts player's ballot for the named map. Unrecognized names are
// dropped without touching any state; votes only count while the player's
// pug is in its voting window.
func (mgr *Manager) VoteMap(player string, name string) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, ok := ParseMap(name)
	if !ok {
		// lenient by choice: the command layer may still tell the
		// player what the valid names are
		return nil
	}

	p := mgr.playerPug(player)
	if p == nil {
		return ErrNoPug
	}
	if !p.VoteInProgress() {
		return ErrVoteNotOpen
	}

	p.Vote().Cast(player, m)
	mgr.notifier.Room(fmt.Sprintf("%v voted for %v (%v)",
		mgr.namer.DisplayName(player), m, p.Vote().CountFor(m)))

	return nil
}

// ForceMapVote starts the map vote on the caller's pug ahead of the
// roster-full trigger. The underlying start still refuses unless the pug
// is Gathering with a full roster.
func (mgr *Manager) ForceMapVote(player string, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p := mgr.playerPug(player)
	if p == nil {
		return ErrNoPug
	}
	mgr.startMapVote(p, now)

	return nil
}

// ForceMapVoteByID starts the vote on an arbitrary pug. Callers operating
// on a pug they are not part of need admin rights.
func (mgr *Manager) ForceMapVoteByID(id int64, caller string, isAdmin bool, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p := mgr.pugByID(id)
	if p == nil {
		return ErrNoSuchPug
	}
	if !p.Has(caller) && !isAdmin {
		return ErrNotAuthorized
	}
	mgr.startMapVote(p, now)

	return nil
}

// ForceResolve closes an open vote immediately instead of waiting for the
// window to expire. Admin only.
func (mgr *Manager) ForceResolve(ctx context.Context, id int64, isAdmin bool, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if !isAdmin {
		return ErrNotAuthorized
	}
	p := mgr.pugByID(id)
	if p == nil {
		return ErrNoSuchPug
	}
	if !p.VoteInProgress() {
		return ErrVoteNotOpen
	}

	return mgr.endMapVote(ctx, p, now)
}

func (mgr *Manager) startMapVote(p *Pug, now int64) {
	if !p.StartMapVote(now) {
		return
	}

	mgr.notifier.Room(fmt.Sprintf(
		"Map voting is now in progress for pug %v. Maps: %v",
		p.ID(), MapsAsString()))
	mgr.notifier.Room("To vote for a map, type !map <map>. eg, !map cp_granary")
}

// Tick drives every time-based transition in the engine. The hosting
// process calls it on a fixed cadence (once per second) with the current
// unix time; pugs whose vote window has expired are resolved, assigned a
// server, and announced. Calling Tick again before any window expires
// changes nothing.
func (mgr *Manager) Tick(ctx context.Context, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	var errs []error
	// iterate over a snapshot; endMapVote can remove a pug on
	// allocation failure
	for _, p := range append([]*Pug(nil), mgr.pugs...) {
		if !p.VoteInProgress() || !p.Vote().Expired(now) {
			continue
		}
		if err := mgr.endMapVote(ctx, p, now); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// endMapVote resolves the vote, splits teams, allocates a server, and
// sends every player the connection details. On allocation failure the pug
// is ended and the error surfaced so the caller can decide about retries.
func (mgr *Manager) endMapVote(ctx context.Context, p *Pug, now int64) error {
	winner, err := p.ResolveVote()
	if err != nil {
		return err
	}

	mgr.notifier.Room(fmt.Sprintf("Map voting is complete. %v won the vote with %v vote(s)",
		winner, p.Vote().CountFor(winner)))

	if err := p.SplitTeams(); err != nil {
		// should be impossible: voting only starts on a full roster
		mgr.log.Error().Err(err).Int64("pug", p.ID()).Msg("team split refused")
		mgr.removePug(ctx, p, now)
		return fmt.Errorf("pug %v: split teams: %w", p.ID(), err)
	}

	info, err := mgr.alloc.Allocate(ctx, p.ID())
	if err != nil {
		mgr.log.Error().Err(err).Int64("pug", p.ID()).Msg("server allocation failed")
		mgr.notifier.Room(fmt.Sprintf(
			"No server could be allocated for pug %v; the pug has been cancelled", p.ID()))
		mgr.removePug(ctx, p, now)
		return fmt.Errorf("pug %v: allocate server: %w", p.ID(), err)
	}
	p.AssignServer(info)

	mgr.notifier.Room(fmt.Sprintf(
		"Pug %v is now in-game. Admin: %v. Details are being sent, please join the server PROMPTLY",
		p.ID(), mgr.namer.DisplayName(p.Starter())))
	mgr.showTeams(p)
	mgr.sendMassDetails(p)

	return nil
}

func (mgr *Manager) showTeams(p *Pug) {
	mgr.notifier.Room(fmt.Sprintf("Teams for pug %v:", p.ID()))
	mgr.notifier.Room(fmt.Sprintf("RED: %v", strings.Join(mgr.nameList(p.TeamRed()), ", ")))
	mgr.notifier.Room(fmt.Sprintf("BLUE: %v", strings.Join(mgr.nameList(p.TeamBlue()), ", ")))
}

func (mgr *Manager) sendMassDetails(p *Pug) {
	for _, player := range p.Roster() {
		mgr.sendDetails(player, p, false)
	}
	p.MarkDetailsSent()
}

func (mgr *Manager) sendDetails(player string, p *Pug, isAdmin bool) {
	info, ok := p.Server()
	if !ok {
		return
	}

	// the starter and admins also get the admin password
	if player == p.Starter() || isAdmin {
		mgr.notifier.Direct(player, fmt.Sprintf(
			"Server details for pug %v: %v. Admin pass: %v",
			p.ID(), info.ConnectString(), info.AdminPassword))
		return
	}

	mgr.notifier.Direct(player, fmt.Sprintf("Server details for pug %v: %v",
		p.ID(), info.ConnectString()))
}

// Details re-sends the server connection details to a player whose pug has
// them. Admins may request details for a pug still being assigned.
func (mgr *Manager) Details(player string, isAdmin bool) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p := mgr.playerPug(player)
	if p == nil {
		return ErrNoPug
	}
	if _, ok := p.Server(); !ok {
		return ErrNoServerDetails
	}
	if p.State() != StateInProgress && p.State() != StateAssigned && !isAdmin {
		return ErrNoServerDetails
	}

	mgr.sendDetails(player, p, isAdmin)

	return nil
}

// EndPug manually ends the caller's pug. Always permitted for the pug's
// starter; anyone else needs admin rights.
func (mgr *Manager) EndPug(ctx context.Context, player string, isAdmin bool, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p := mgr.playerPug(player)
	if p == nil {
		return ErrNoPug
	}

	return mgr.endPug(ctx, p, player, isAdmin, now)
}

// EndPugByID manually ends a specific pug; admin only unless the caller is
// that pug's starter.
func (mgr *Manager) EndPugByID(ctx context.Context, id int64, caller string, isAdmin bool, now int64) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	p := mgr.pugByID(id)
	if p == nil {
		return ErrNoSuchPug
	}

	return mgr.endPug(ctx, p, caller, isAdmin, now)
}

func (mgr *Manager) endPug(ctx context.Context, p *Pug, caller string, isAdmin bool, now int64) error {
	if p.Starter() != caller && !isAdmin {
		return ErrNotAuthorized
	}

	mgr.removePug(ctx, p, now)
	mgr.notifier.Room(fmt.Sprintf("Pug %v has been manually ended", p.ID()))

	return nil
}

// removePug transitions p to Over, releases any server allocation, records
// history, and drops p from the active set.
func (mgr *Manager) removePug(ctx context.Context, p *Pug, now int64) {
	p.End()

	if err := mgr.alloc.Release(ctx, p.ID()); err != nil {
		mgr.log.Warn().Err(err).Int64("pug", p.ID()).Msg("server release failed")
	}
	mgr.record(ctx, p, now)

	for i, cur := range mgr.pugs {
		if cur == p {
			mgr.pugs = append(mgr.pugs[:i], mgr.pugs[i+1:]...)
			break
		}
	}
}

func (mgr *Manager) record(ctx context.Context, p *Pug, now int64) {
	if mgr.recorder == nil {
		return
	}

	sum := Summary{
		PugID:     p.ID(),
		Capacity:  p.Capacity(),
		Map:       p.WinningMap().String(),
		Players:   mgr.nameList(p.Roster()),
		CreatedAt: p.ID(),
		EndedAt:   now,
	}
	if err := mgr.recorder.Record(ctx, sum); err != nil {
		mgr.log.Warn().Err(err).Int64("pug", p.ID()).Msg("history record failed")
	}
}

// PlayerPug returns the pug player currently belongs to, or nil.
func (mgr *Manager) PlayerPug(player string) *Pug {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	return mgr.playerPug(player)
}

// PugByID returns the active pug with the given id, or nil.
func (mgr *Manager) PugByID(id int64) *Pug {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	return mgr.pugByID(id)
}

// Pugs returns the active pugs in creation order.
func (mgr *Manager) Pugs() []*Pug {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	return append([]*Pug(nil), mgr.pugs...)
}

// PlayerList renders a pug's roster as a comma separated list of display
// names.
func (mgr *Manager) PlayerList(p *Pug) string {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	return mgr.playerList(p)
}

func (mgr *Manager) playerList(p *Pug) string {
	return strings.Join(mgr.nameList(p.Roster()), ", ")
}

func (mgr *Manager) nameList(players []string) []string {
	names := make([]string, 0, len(players))
	for _, id := range players {
		names = append(names, mgr.namer.DisplayName(id))
	}

	return names
}

func (mgr *Manager) playerPug(player string) *Pug {
	for _, p := range mgr.pugs {
		if p.Has(player) {
			return p
		}
	}

	return nil
}

func (mgr *Manager) pugByID(id int64) *Pug {
	for _, p := range mgr.pugs {
		if p.ID() == id {
			return p
		}
	}

	return nil
}

func (mgr *Manager) spaceAvailable() *Pug {
	for _, p := range mgr.pugs {
		if p.State() == StateGathering && !p.Full() {
			return p
		}
	}

	return nil
}
