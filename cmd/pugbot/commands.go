/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tf2pug/pugbot/pug"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for chat command handler functions.
// The returned string, if any, is sent back to the channel the command
// came from.
type cmdHandler func(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string

// commands maps chat commands (and their aliases) to handler functions.
var commands = map[string]cmdHandler{
	"!j":            handleJoin,
	"!join":         handleJoin,
	"!add":          handleJoin,
	"!me":           handleJoin,
	"!l":            handleLeave,
	"!leave":        handleLeave,
	"!pug":          handleCreate,
	"!map":          handleVote,
	"!maps":         handleMaps,
	"!players":      handlePlayers,
	"!status":       handlePlayers,
	"!forcemapvote": handleForceMapVote,
	"!forceresolve": handleForceResolve,
	"!end":          handleEnd,
	"!members":      handleMembers,
	"!details":      handleDetails,
	"!last":         handleLast,
	"!help":         handleHelp,
}

// handleMessage is the discordgo MessageCreate callback. Commands are
// accepted from the pug channel and from DMs; everything else is ignored.
func (b *bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID != "" && m.ChannelID != b.cfg.PugChannelID {
		return
	}

	fields := strings.Fields(m.Content)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return
	}

	cmd := strings.ToLower(fields[0])
	handler, ok := commands[cmd]
	if !ok {
		return
	}

	// anyone speaking in the pug channel is, by definition, present in it
	if m.GuildID != "" {
		if home := b.dir.Home(); home != nil {
			home.AddToRoom(m.Author.ID)
		}
	}

	b.log.Debug().Str("cmd", cmd).Str("player", m.Author.ID).Msg("pugbot.cmd")

	ctx := context.Background()
	if reply := handler(ctx, b, m, fields[1:]); reply != "" {
		if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
			b.log.Warn().Err(err).Msg("pugbot.cmd: reply failed")
		}
	}
}

func handleJoin(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	// rejections are delivered by the manager as direct messages
	_ = b.mgr.AddPlayer(ctx, ev.Author.ID, time.Now().Unix())

	return ""
}

func handleLeave(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	err := b.mgr.RemovePlayer(ev.Author.ID)
	if errors.Is(err, pug.ErrNoPug) {
		return "You're not in a pug"
	}

	return ""
}

func handleCreate(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	size := pug.DefaultSize
	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "Usage: !pug [12|18]"
		}
		size = n
	}

	_ = b.mgr.CreatePug(ctx, ev.Author.ID, size, time.Now().Unix())

	return ""
}

func handleVote(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	if len(args) != 1 {
		return "Usage: !map <map>. Maps: " + pug.MapsAsString()
	}

	if _, ok := pug.ParseMap(args[0]); !ok {
		// the engine drops unknown maps silently; still steer the
		// player to the valid list
		return fmt.Sprintf("Unknown map %q. Maps: %v", args[0], pug.MapsAsString())
	}

	_ = b.mgr.VoteMap(ev.Author.ID, args[0])

	return ""
}

func handleMaps(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	return pug.MapsAsString()
}

func handlePlayers(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	pugs := b.mgr.Pugs()
	if len(pugs) == 0 {
		return "No active pugs. Type !j to start one"
	}

	var sb strings.Builder
	for i, p := range pugs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Pug %v [%v]: %v. Players: %v",
			p.ID(), p.Capacity(), p.StatusMessage(), b.mgr.PlayerList(p))
	}

	return sb.String()
}

func handleForceMapVote(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	now := time.Now().Unix()
	isAdmin := b.auth.IsAdmin(ev.Author.ID)

	var err error
	if len(args) >= 1 {
		id, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil {
			return "Usage: !forcemapvote [pugid]"
		}
		err = b.mgr.ForceMapVoteByID(id, ev.Author.ID, isAdmin, now)
	} else {
		err = b.mgr.ForceMapVote(ev.Author.ID, now)
	}

	return rejectionReply(err)
}

func handleForceResolve(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	if len(args) != 1 {
		return "Usage: !forceresolve <pugid>"
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "Usage: !forceresolve <pugid>"
	}

	return rejectionReply(b.mgr.ForceResolve(ctx, id,
		b.auth.IsAdmin(ev.Author.ID), time.Now().Unix()))
}

func handleEnd(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	now := time.Now().Unix()
	isAdmin := b.auth.IsAdmin(ev.Author.ID)

	var err error
	if len(args) >= 1 {
		id, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil {
			return "Usage: !end [pugid]"
		}
		err = b.mgr.EndPugByID(ctx, id, ev.Author.ID, isAdmin, now)
	} else {
		err = b.mgr.EndPug(ctx, ev.Author.ID, isAdmin, now)
	}

	return rejectionReply(err)
}

func handleMembers(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	if !b.auth.IsAdmin(ev.Author.ID) {
		return "You are not authorized to list members"
	}

	home := b.dir.Home()
	if home == nil {
		return "No home clan configured"
	}

	members := home.Members()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v known member(s):", len(members))
	for _, id := range members {
		fmt.Fprintf(&sb, "\n%v [%v]", b.namer.DisplayName(id), home.GetRank(id))
	}

	return sb.String()
}

func handleDetails(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	err := b.mgr.Details(ev.Author.ID, b.auth.IsAdmin(ev.Author.ID))

	return rejectionReply(err)
}

func handleLast(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	if b.hist == nil {
		return "Match history is not enabled"
	}

	n := 5
	if len(args) >= 1 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 && v <= 20 {
			n = v
		}
	}

	recs, err := b.hist.Recent(ctx, n)
	if err != nil {
		b.log.Warn().Err(err).Msg("pugbot.cmd: history fetch failed")
		return "Could not fetch match history"
	}
	if len(recs) == 0 {
		return "No pugs on record yet"
	}

	var sb strings.Builder
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString("\n")
		}
		ended := "?"
		if t := rec.EndedTime(); !t.IsZero() {
			ended = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&sb, "Pug %v on %v (%v players), ended %v",
			rec.PugID, rec.Map, len(rec.Players), ended)
	}

	return sb.String()
}

func handleHelp(ctx context.Context, b *bot, ev *discordgo.MessageCreate,
	args []string) string {

	return helpText
}

// rejectionReply maps the engine's expected rejections to user-facing
// text. Unexpected errors were already logged where they happened and get
// a generic reply.
func rejectionReply(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pug.ErrNoPug):
		return "You're not in a pug"
	case errors.Is(err, pug.ErrNoSuchPug):
		return "No pug with that id"
	case errors.Is(err, pug.ErrNotAuthorized):
		return "You are not authorized to do that"
	case errors.Is(err, pug.ErrVoteNotOpen):
		return "No map vote is in progress"
	case errors.Is(err, pug.ErrNoServerDetails):
		return "Server details are not available yet"
	case errors.Is(err, pug.ErrAlreadyInPug),
		errors.Is(err, pug.ErrInvalidSize),
		errors.Is(err, pug.ErrNotGathering):
		// already handled with a direct message
		return ""
	}

	return "Something went wrong; try again shortly"
}
