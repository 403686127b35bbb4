/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tf2pug/pugbot/clan"
	"github.com/tf2pug/pugbot/history"
	"github.com/tf2pug/pugbot/internal/config"
	"github.com/tf2pug/pugbot/pug"
)

// bot ties the engine to the Discord gateway: it owns the manager, the
// clan directory fed from guild events, and the authorizer gating
// privileged commands.
type bot struct {
	cfg   *config.Config
	mgr   *pug.Manager
	dir   *clan.Directory
	auth  *clan.Authorizer
	namer *discordNamer
	hist  *history.Store
	log   zerolog.Logger
}

// rankFromRoles maps a member's guild roles onto a clan rank using the
// configured role ids. The highest matching rank wins.
func (b *bot) rankFromRoles(roles []string) clan.Rank {
	rank := clan.RankNone
	for _, role := range roles {
		switch role {
		case b.cfg.OwnerRoleID:
			return clan.RankOwner
		case b.cfg.OfficerRoleID:
			if rank < clan.RankOfficer {
				rank = clan.RankOfficer
			}
		case b.cfg.MemberRoleID:
			if rank < clan.RankMember {
				rank = clan.RankMember
			}
		}
	}

	return rank
}

// onReady requests the full member list so the rank directory is seeded
// even for members who never speak.
func (b *bot) onReady(s *discordgo.Session, ev *discordgo.Ready) {
	b.log.Info().Str("user", ev.User.Username).Msg("pugbot.gateway: connected")

	if err := s.RequestGuildMembers(b.cfg.HomeGuildID, "", 0, "", false); err != nil {
		b.log.Warn().Err(err).Msg("pugbot.gateway: member chunk request failed")
	}
}

func (b *bot) onGuildMembersChunk(s *discordgo.Session, ev *discordgo.GuildMembersChunk) {
	if ev.GuildID != b.cfg.HomeGuildID {
		return
	}
	home := b.dir.Home()
	if home == nil {
		return
	}

	for _, member := range ev.Members {
		if member.User == nil {
			continue
		}
		home.SetRank(member.User.ID, b.rankFromRoles(member.Roles))
	}

	b.log.Info().Int("members", len(ev.Members)).Msg("pugbot.gateway: rank directory seeded")
}

func (b *bot) onGuildMemberUpdate(s *discordgo.Session, ev *discordgo.GuildMemberUpdate) {
	if ev.GuildID != b.cfg.HomeGuildID || ev.User == nil {
		return
	}
	if home := b.dir.Home(); home != nil {
		home.SetRank(ev.User.ID, b.rankFromRoles(ev.Roles))
	}
	b.namer.forget(ev.User.ID)
}

func (b *bot) onGuildMemberAdd(s *discordgo.Session, ev *discordgo.GuildMemberAdd) {
	if ev.GuildID != b.cfg.HomeGuildID || ev.User == nil {
		return
	}
	if home := b.dir.Home(); home != nil {
		home.SetRank(ev.User.ID, b.rankFromRoles(ev.Roles))
	}
}

// onGuildMemberRemove drops the member from the directory and pulls them
// out of any pug still gathering players.
func (b *bot) onGuildMemberRemove(s *discordgo.Session, ev *discordgo.GuildMemberRemove) {
	if ev.GuildID != b.cfg.HomeGuildID || ev.User == nil {
		return
	}
	if home := b.dir.Home(); home != nil {
		home.RemoveMember(ev.User.ID)
		home.RemoveFromRoom(ev.User.ID)
	}
	b.namer.forget(ev.User.ID)

	_ = b.mgr.RemovePlayer(ev.User.ID)
}
