/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package gameserver

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// TestParseServerList verifies the SERVER_POOL config format.
func TestParseServerList(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    []Server
		wantErr bool
	}{
		{
			name:  "single with rcon",
			input: "game1.example.net:27015,secret",
			want:  []Server{{Addr: "game1.example.net", Port: 27015, RconPassword: "secret"}},
		},
		{
			name:  "multiple mixed",
			input: "game1.example.net:27015,secret; game2.example.net:27016",
			want: []Server{
				{Addr: "game1.example.net", Port: 27015, RconPassword: "secret"},
				{Addr: "game2.example.net", Port: 27016},
			},
		},
		{
			name:  "trailing separator",
			input: "10.1.2.3:27015;",
			want:  []Server{{Addr: "10.1.2.3", Port: 27015}},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "missing port", input: "game1.example.net", wantErr: true},
		{name: "bad port", input: "game1.example.net:notaport", wantErr: true},
		{name: "port out of range", input: "game1.example.net:70000", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseServerList(c.input)
			if gotErr := err != nil; gotErr != c.wantErr {
				t.Fatalf("ParseServerList(%q) err = %v; wantErr %v", c.input, err, c.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %d servers; want %d", len(got), len(c.want))
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Errorf("server[%d] = %+v; want %+v", i, got[i], c.want[i])
				}
			}
		})
	}
}

// TestPoolAllocateRelease walks the reservation lifecycle.
func TestPoolAllocateRelease(t *testing.T) {
	ctx := context.Background()
	servers := []Server{
		{Addr: "10.0.0.1", Port: 27015},
		{Addr: "10.0.0.2", Port: 27015},
	}
	pool := NewPool(servers, nil, zerolog.Nop())

	info1, err := pool.Allocate(ctx, 100)
	if err != nil {
		t.Fatalf("Allocate(100) failed: %v", err)
	}
	if info1.Addr != "10.0.0.1" {
		t.Errorf("first allocation = %v; want 10.0.0.1", info1.Addr)
	}
	if info1.Password == "" || info1.AdminPassword == "" {
		t.Errorf("allocation came without passwords: %+v", info1)
	}
	if info1.Password == info1.AdminPassword {
		t.Errorf("join and admin passwords are identical")
	}

	// same pug re-allocating gets its reserved server back
	again, err := pool.Allocate(ctx, 100)
	if err != nil {
		t.Fatalf("re-Allocate(100) failed: %v", err)
	}
	if again.Addr != info1.Addr {
		t.Errorf("re-allocation moved servers: %v", again.Addr)
	}

	info2, err := pool.Allocate(ctx, 200)
	if err != nil {
		t.Fatalf("Allocate(200) failed: %v", err)
	}
	if info2.Addr != "10.0.0.2" {
		t.Errorf("second allocation = %v; want 10.0.0.2", info2.Addr)
	}

	if _, err := pool.Allocate(ctx, 300); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("exhausted pool err = %v; want ErrPoolExhausted", err)
	}

	if err := pool.Release(ctx, 100); err != nil {
		t.Fatalf("Release(100) failed: %v", err)
	}
	// releasing an unknown pug is a no-op
	if err := pool.Release(ctx, 9999); err != nil {
		t.Errorf("Release(unknown) err = %v; want nil", err)
	}

	info3, err := pool.Allocate(ctx, 300)
	if err != nil {
		t.Fatalf("Allocate(300) after release failed: %v", err)
	}
	if info3.Addr != "10.0.0.1" {
		t.Errorf("allocation after release = %v; want 10.0.0.1", info3.Addr)
	}
}

type stubProbe struct {
	busy map[string]bool
	err  error
}

func (sp *stubProbe) Busy(ctx context.Context, srv Server) (bool, error) {
	if sp.err != nil {
		return false, sp.err
	}
	return sp.busy[srv.Addr], nil
}

// TestPoolProbe verifies occupied servers are skipped and probe failures
// degrade to assuming free.
func TestPoolProbe(t *testing.T) {
	ctx := context.Background()
	servers := []Server{
		{Addr: "10.0.0.1", Port: 27015},
		{Addr: "10.0.0.2", Port: 27015},
	}

	pool := NewPool(servers, &stubProbe{busy: map[string]bool{"10.0.0.1": true}}, zerolog.Nop())
	info, err := pool.Allocate(ctx, 100)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if info.Addr != "10.0.0.2" {
		t.Errorf("allocation = %v; want occupied 10.0.0.1 skipped", info.Addr)
	}

	pool2 := NewPool(servers, &stubProbe{err: errors.New("panel down")}, zerolog.Nop())
	info2, err := pool2.Allocate(ctx, 100)
	if err != nil {
		t.Fatalf("Allocate with failing probe failed: %v", err)
	}
	if info2.Addr != "10.0.0.1" {
		t.Errorf("allocation = %v; probe failure should assume free", info2.Addr)
	}
}

// TestParsePlayerCount verifies panel cell parsing.
func TestParsePlayerCount(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{input: "0/24", want: 0},
		{input: "17/24", want: 17},
		{input: " 3 / 24 ", want: 3},
		{input: "12", want: 12},
		{input: "", want: 0},
		{input: "n/a", want: 0},
	}
	for _, c := range cases {
		if got := parsePlayerCount(c.input); got != c.want {
			t.Errorf("parsePlayerCount(%q) = %d; want %d", c.input, got, c.want)
		}
	}
}
