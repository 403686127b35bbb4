/* Copyright © 2026 The pugbot Authors. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/tf2pug/pugbot/clan"
	"github.com/tf2pug/pugbot/gameserver"
	"github.com/tf2pug/pugbot/history"
	"github.com/tf2pug/pugbot/internal/config"
	"github.com/tf2pug/pugbot/internal/httpcache"
	"github.com/tf2pug/pugbot/internal/logger"
	"github.com/tf2pug/pugbot/pug"
	"github.com/tf2pug/pugbot/s3store"
)

const tickInterval = time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootLog := logger.New("info")
	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("pugbot.main: bad configuration")
	}
	log := logger.New(cfg.LogLevel)

	servers, err := gameserver.ParseServerList(cfg.ServerPool)
	if err != nil {
		log.Fatal().Err(err).Msg("pugbot.main: bad server pool")
	}

	// S3 backs both match history and the status scraper's HTTP cache;
	// losing it degrades those features but never stops the bot
	var store *s3store.Store
	if cfg.HistoryBucket != "" {
		store = s3store.New(ctx, cfg.HistoryBucket, true, log)
		if err := store.Init(); err != nil {
			log.Warn().Err(err).Msg("pugbot.main: S3 unavailable; history disabled")
			store = nil
		}
	}

	var probe gameserver.Probe
	if cfg.ServerStatusURL != "" {
		client := http.DefaultClient
		if store != nil {
			client = httpcache.NewCachedHttpClient(store, 30*time.Second)
		}
		probe = gameserver.NewStatusProbe(client, cfg.ServerStatusURL)
	}
	pool := gameserver.NewPool(servers, probe, log)

	dir := clan.NewDirectory()
	if _, err := dir.Add(cfg.HomeGuildID, cfg.PugChannelID); err != nil {
		log.Fatal().Err(err).Msg("pugbot.main: clan directory setup failed")
	}
	auth := clan.NewAuthorizer(dir)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("pugbot.main: failed to initialize discord client")
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	namer := newDiscordNamer(session, cfg.HomeGuildID)
	notifier := &discordNotifier{
		session:   session,
		channelID: cfg.PugChannelID,
		log:       log,
	}

	var hist *history.Store
	var recorder pug.Recorder
	if store != nil {
		hist = history.NewStore(store, log)
		recorder = hist
	}

	mgr := pug.NewManager(notifier, namer, pool, recorder, cfg.VoteDuration, log)

	b := &bot{
		cfg:   cfg,
		mgr:   mgr,
		dir:   dir,
		auth:  auth,
		namer: namer,
		hist:  hist,
		log:   log,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildMembersChunk)
	session.AddHandler(b.onGuildMemberAdd)
	session.AddHandler(b.onGuildMemberUpdate)
	session.AddHandler(b.onGuildMemberRemove)
	session.AddHandler(b.handleMessage)

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("pugbot.main: gateway connect failed")
	}
	defer session.Close()

	log.Info().Msg("pugbot.main: running")

	// the engine has no timers of its own: the tick loop supplies both
	// the cadence and the wall clock
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case now := <-ticker.C:
				if err := mgr.Tick(gctx, now.Unix()); err != nil {
					log.Warn().Err(err).Msg("pugbot.main: tick")
				}
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("pugbot.main: exiting on error")
		os.Exit(1)
	}

	log.Info().Msg("pugbot.main: shutting down")
}
