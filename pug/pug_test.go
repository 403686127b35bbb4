/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pug

import (
	"errors"
	"fmt"
	"testing"
)

func fillPug(t *testing.T, p *Pug) {
	t.Helper()
	for i := len(p.Roster()); i < p.Capacity(); i++ {
		if err := p.Add(fmt.Sprintf("p%v", i+1)); err != nil {
			t.Fatalf("Add(p%v) failed: %v", i+1, err)
		}
	}
}

// TestNewPugSize verifies only the allowed pug sizes are accepted.
func TestNewPugSize(t *testing.T) {
	cases := []struct {
		size    int
		wantErr bool
	}{
		{size: 12, wantErr: false},
		{size: 18, wantErr: false},
		{size: 0, wantErr: true},
		{size: 10, wantErr: true},
		{size: 24, wantErr: true},
		{size: -12, wantErr: true},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("size %v", c.size), func(t *testing.T) {
			_, err := NewPug(1, c.size, 60)
			if gotErr := err != nil; gotErr != c.wantErr {
				t.Errorf("NewPug(size=%v) err = %v; wantErr %v", c.size, err, c.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSize) {
				t.Errorf("err = %v; want ErrInvalidSize", err)
			}
		})
	}
}

// TestRosterInvariants verifies join order, the duplicate guard, and the
// capacity bound.
func TestRosterInvariants(t *testing.T) {
	p, err := NewPug(1, 12, 60)
	if err != nil {
		t.Fatalf("NewPug failed: %v", err)
	}

	if err := p.Add("starter"); err != nil {
		t.Fatalf("Add(starter) failed: %v", err)
	}
	if p.Starter() != "starter" {
		t.Errorf("Starter() = %q; want starter", p.Starter())
	}
	if err := p.Add("starter"); !errors.Is(err, ErrAlreadyInPug) {
		t.Errorf("duplicate Add err = %v; want ErrAlreadyInPug", err)
	}

	fillPug(t, p)
	if !p.Full() {
		t.Fatalf("pug not full after %v joins", p.Capacity())
	}
	if err := p.Add("extra"); !errors.Is(err, ErrPugFull) {
		t.Errorf("Add on full pug err = %v; want ErrPugFull", err)
	}
	if len(p.Roster()) != p.Capacity() {
		t.Errorf("roster length %v exceeds capacity %v", len(p.Roster()), p.Capacity())
	}

	// leave preserves order of the rest
	p2, _ := NewPug(2, 12, 60)
	p2.Add("a")
	p2.Add("b")
	p2.Add("c")
	if !p2.Remove("b") {
		t.Fatalf("Remove(b) = false; want true")
	}
	if p2.Remove("b") {
		t.Errorf("second Remove(b) = true; want false")
	}
	roster := p2.Roster()
	if len(roster) != 2 || roster[0] != "a" || roster[1] != "c" {
		t.Errorf("roster after remove = %v; want [a c]", roster)
	}
}

// TestStartMapVoteOnce verifies the Gathering -> Voting transition happens
// exactly once, only on a full roster.
func TestStartMapVoteOnce(t *testing.T) {
	p, _ := NewPug(1, 12, 60)
	p.Add("starter")

	if p.StartMapVote(1000) {
		t.Fatalf("StartMapVote started on a non-full roster")
	}
	if p.State() != StateGathering {
		t.Fatalf("state = %v; want gathering", p.State())
	}

	fillPug(t, p)
	if !p.StartMapVote(1000) {
		t.Fatalf("StartMapVote refused on a full roster")
	}
	if p.State() != StateVoting {
		t.Fatalf("state = %v; want voting", p.State())
	}

	// idempotent guard
	if p.StartMapVote(1005) {
		t.Errorf("StartMapVote started a second time")
	}
	// the original window (opened at 1000) must still be in effect
	if !p.Vote().Expired(1061) {
		t.Errorf("second StartMapVote call moved the vote window")
	}
}

// TestStateMachine walks the full lifecycle.
func TestStateMachine(t *testing.T) {
	p, _ := NewPug(1, 12, 60)
	fillPug(t, p)

	if _, err := p.ResolveVote(); !errors.Is(err, ErrVoteNotOpen) {
		t.Errorf("ResolveVote before voting err = %v; want ErrVoteNotOpen", err)
	}

	p.StartMapVote(1000)
	p.Vote().Cast("p1", MapWell)

	winner, err := p.ResolveVote()
	if err != nil {
		t.Fatalf("ResolveVote failed: %v", err)
	}
	if winner != MapWell || p.WinningMap() != MapWell {
		t.Errorf("winner = %v / %v; want cp_well", winner, p.WinningMap())
	}

	p.AssignServer(ServerInfo{Addr: "10.0.0.1", Port: 27015, Password: "pw"})
	if p.State() != StateAssigned {
		t.Fatalf("state = %v after AssignServer; want assigned", p.State())
	}
	if info, ok := p.Server(); !ok || info.Addr != "10.0.0.1" {
		t.Errorf("Server() = (%v, %v)", info, ok)
	}

	p.MarkDetailsSent()
	if p.State() != StateInProgress {
		t.Fatalf("state = %v after details; want in progress", p.State())
	}

	p.End()
	if p.State() != StateOver {
		t.Fatalf("state = %v after End; want over", p.State())
	}
}

// TestResolveVoteDefault verifies the default map is substituted when no
// ballots were cast.
func TestResolveVoteDefault(t *testing.T) {
	p, _ := NewPug(1, 12, 60)
	fillPug(t, p)
	p.StartMapVote(1000)

	winner, err := p.ResolveVote()
	if err != nil {
		t.Fatalf("ResolveVote failed: %v", err)
	}
	if winner != DefaultMap {
		t.Errorf("winner = %v on empty ballots; want %v", winner, DefaultMap)
	}
}

// TestSplitTeams verifies the strict positional split and the precondition
// guard on an incomplete roster.
func TestSplitTeams(t *testing.T) {
	p, _ := NewPug(1, 12, 60)
	p.Add("p1")

	if err := p.SplitTeams(); !errors.Is(err, ErrRosterNotFull) {
		t.Fatalf("SplitTeams on partial roster err = %v; want ErrRosterNotFull", err)
	}
	if len(p.TeamRed()) != 0 || len(p.TeamBlue()) != 0 {
		t.Fatalf("refused split still populated teams")
	}

	fillPug(t, p)
	if err := p.SplitTeams(); err != nil {
		t.Fatalf("SplitTeams failed: %v", err)
	}

	red, blue := p.TeamRed(), p.TeamBlue()
	if len(red) != 6 || len(blue) != 6 {
		t.Fatalf("team sizes = %v/%v; want 6/6", len(red), len(blue))
	}
	roster := p.Roster()
	for i := 0; i < 6; i++ {
		if red[i] != roster[i] {
			t.Errorf("red[%d] = %v; want %v", i, red[i], roster[i])
		}
		if blue[i] != roster[i+6] {
			t.Errorf("blue[%d] = %v; want %v", i, blue[i], roster[i+6])
		}
	}
}

func TestSlotsRemaining(t *testing.T) {
	p, _ := NewPug(1, 12, 60)
	if p.SlotsRemaining() != "12/12 slots remaining" {
		t.Errorf("SlotsRemaining() = %q", p.SlotsRemaining())
	}
	p.Add("p1")
	if p.SlotsRemaining() != "11/12 slots remaining" {
		t.Errorf("SlotsRemaining() = %q", p.SlotsRemaining())
	}
}

func TestConnectString(t *testing.T) {
	info := ServerInfo{Addr: "1.1.1.1", Port: 11111, Password: "123abc"}
	want := "connect 1.1.1.1:11111; password 123abc"
	if info.ConnectString() != want {
		t.Errorf("ConnectString() = %q; want %q", info.ConnectString(), want)
	}
}
