/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package gameserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/tf2pug/pugbot/pug"
)

// passwords are pasted into the TF2 console, so keep the alphabet free of
// shell- and quote-hostile characters
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"
const passwordLen = 10

// Server is one entry in the fixed inventory the pool hands out.
type Server struct {
	Addr         string
	Port         int
	RconPassword string
}

// ErrPoolExhausted is returned when every server in the inventory is
// already reserved by an active pug.
var ErrPoolExhausted = fmt.Errorf("gameserver: no free server in pool")

// Pool implements pug.Allocator over a fixed server inventory. Allocation
// reserves the first server not held by another pug; an optional status
// probe additionally skips servers the panel reports as occupied.
type Pool struct {
	mu sync.Mutex

	servers []Server
	inUse   map[int64]int // pug id -> servers index

	probe Probe
	log   zerolog.Logger
}

// Probe reports whether a server currently has players on it. A nil Probe
// disables the check.
type Probe interface {
	Busy(ctx context.Context, srv Server) (bool, error)
}

func NewPool(servers []Server, probe Probe, log zerolog.Logger) *Pool {
	return &Pool{
		servers: servers,
		inUse:   make(map[int64]int),
		probe:   probe,
		log:     log,
	}
}

// ParseServerList parses the SERVER_POOL config format:
// "host:port,rconpw;host:port,rconpw". The rcon password is optional per
// entry.
func ParseServerList(s string) ([]Server, error) {
	var out []Server

	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		var rcon string
		if idx := strings.Index(entry, ","); idx != -1 {
			rcon = strings.TrimSpace(entry[idx+1:])
			entry = entry[:idx]
		}

		host, portStr, found := strings.Cut(entry, ":")
		if !found || host == "" {
			return nil, fmt.Errorf("gameserver: malformed server entry %q", entry)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("gameserver: bad port in server entry %q", entry)
		}

		out = append(out, Server{Addr: host, Port: port, RconPassword: rcon})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("gameserver: empty server list")
	}

	return out, nil
}

// Allocate reserves a server for the given pug and returns fresh join and
// admin passwords for it.
func (p *Pool) Allocate(ctx context.Context, pugID int64) (pug.ServerInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.inUse[pugID]; ok {
		// already allocated; hand back the same server rather than
		// leaking a second one
		return p.infoFor(p.servers[idx])
	}

	for idx, srv := range p.servers {
		if p.reserved(idx) {
			continue
		}
		if p.probe != nil {
			busy, err := p.probe.Busy(ctx, srv)
			if err != nil {
				// probe trouble is not a reason to refuse the
				// server; assume free
				p.log.Warn().Err(err).Str("server", srv.Addr).
					Msg("status probe failed, assuming free")
			} else if busy {
				continue
			}
		}

		info, err := p.infoFor(srv)
		if err != nil {
			return pug.ServerInfo{}, err
		}
		p.inUse[pugID] = idx

		p.log.Info().Int64("pug", pugID).
			Str("server", fmt.Sprintf("%v:%v", srv.Addr, srv.Port)).
			Msg("server allocated")

		return info, nil
	}

	return pug.ServerInfo{}, ErrPoolExhausted
}

// Release frees the server held by the given pug. Safe to call for a pug
// that was never allocated.
func (p *Pool) Release(ctx context.Context, pugID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.inUse[pugID]
	if !ok {
		return nil
	}
	delete(p.inUse, pugID)

	p.log.Info().Int64("pug", pugID).
		Str("server", fmt.Sprintf("%v:%v", p.servers[idx].Addr, p.servers[idx].Port)).
		Msg("server released")

	return nil
}

func (p *Pool) reserved(idx int) bool {
	for _, used := range p.inUse {
		if used == idx {
			return true
		}
	}

	return false
}

func (p *Pool) infoFor(srv Server) (pug.ServerInfo, error) {
	join, err := gonanoid.Generate(passwordAlphabet, passwordLen)
	if err != nil {
		return pug.ServerInfo{}, fmt.Errorf("gameserver: generate join password: %w", err)
	}
	admin, err := gonanoid.Generate(passwordAlphabet, passwordLen)
	if err != nil {
		return pug.ServerInfo{}, fmt.Errorf("gameserver: generate admin password: %w", err)
	}

	return pug.ServerInfo{
		Addr:          srv.Addr,
		Port:          srv.Port,
		Password:      join,
		AdminPassword: admin,
	}, nil
}
