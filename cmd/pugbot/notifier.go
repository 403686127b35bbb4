/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// discordNotifier implements pug.Notifier over a discordgo session.
// Room messages go to the configured pug channel; direct messages open (or
// reuse) a DM channel with the player.
type discordNotifier struct {
	session   *discordgo.Session
	channelID string
	log       zerolog.Logger
}

func (n *discordNotifier) Room(msg string) {
	if _, err := n.session.ChannelMessageSend(n.channelID, msg); err != nil {
		n.log.Warn().Err(err).Msg("pugbot.notify: room send failed")
	}
}

func (n *discordNotifier) Direct(player string, msg string) {
	ch, err := n.session.UserChannelCreate(player)
	if err != nil {
		n.log.Warn().Err(err).Str("player", player).
			Msg("pugbot.notify: dm channel create failed")
		return
	}
	if _, err := n.session.ChannelMessageSend(ch.ID, msg); err != nil {
		n.log.Warn().Err(err).Str("player", player).
			Msg("pugbot.notify: dm send failed")
	}
}

// discordNamer implements pug.Namer, resolving user ids to guild nicknames
// with a small cache in front of the member fetch.
type discordNamer struct {
	session *discordgo.Session
	guildID string

	mu    sync.Mutex
	cache map[string]string
}

func newDiscordNamer(session *discordgo.Session, guildID string) *discordNamer {
	return &discordNamer{
		session: session,
		guildID: guildID,
		cache:   make(map[string]string),
	}
}

func (dn *discordNamer) DisplayName(player string) string {
	dn.mu.Lock()
	name, ok := dn.cache[player]
	dn.mu.Unlock()
	if ok {
		return name
	}

	member, err := dn.session.GuildMember(dn.guildID, player)
	if err != nil || member == nil || member.User == nil {
		// fall back to the raw id rather than dropping the mention
		return player
	}

	name = member.Nick
	if name == "" {
		name = member.User.GlobalName
	}
	if name == "" {
		name = member.User.Username
	}

	dn.mu.Lock()
	dn.cache[player] = name
	dn.mu.Unlock()

	return name
}

// forget drops a cached name so nickname changes propagate.
func (dn *discordNamer) forget(player string) {
	dn.mu.Lock()
	delete(dn.cache, player)
	dn.mu.Unlock()
}
