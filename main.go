package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/tgward/internal/bot"
	"github.com/iamwavecut/tgward/internal/client"
	"github.com/iamwavecut/tgward/internal/config"
	"github.com/iamwavecut/tgward/internal/db/sqlite"
	"github.com/iamwavecut/tgward/internal/infra"
	"github.com/iamwavecut/tgward/internal/lifecycle"
	"github.com/iamwavecut/tgward/internal/observability"
	"github.com/iamwavecut/tgward/internal/spam"
)

func main() {
	cfg := config.Get()
	log.SetFormatter(&config.WardFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := observability.Init(ctx); err != nil {
		log.WithError(err).Fatalln("cant initialize observability")
	}

	apiClient := client.New(
		cfg.TelegramAPIToken,
		log.WithField("context", "client"),
		client.WithHost(cfg.TelegramAPIHost),
	)
	ward := bot.New(apiClient, log.WithField("context", "bot"))

	store, err := sqlite.NewClient(ctx, infra.GetWorkDir(cfg.DotPath), "ward.db", log.WithField("context", "db"))
	if err != nil {
		log.WithError(err).Fatalln("cant open offense ledger db")
	}
	defer store.Close()

	filter := spam.NewFilter(spam.Config{
		Interval:        cfg.SpamFilter.Interval,
		ExcomDuration:   cfg.SpamFilter.ExcomDuration,
		FirstThreshold:  cfg.SpamFilter.FirstThreshold,
		SecondThreshold: cfg.SpamFilter.SecondThreshold,
		ShouldWarn:      cfg.SpamFilter.ShouldWarn,
		ShouldExcom:     cfg.SpamFilter.ShouldExcom,
		Language:        cfg.DefaultLanguage,
	}, ward, store, log.WithField("context", "spam"))
	ward.AttachFilter(filter)

	runtime := lifecycle.NewRuntime(
		observability.NewServer(cfg.MetricsAddr),
		filter,
	)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start components")
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := runtime.Stop(stopCtx); err != nil {
			log.WithError(err).Errorln("cant stop components")
		}
	}()

	me, err := ward.GetMe(ctx)
	if err != nil {
		log.WithError(err).Fatalln("cant identify bot")
	}
	log.WithField("username", me.UserName).Infoln("bot online")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		infra.GoRecoverable(-1, "poll", func() {
			poll(gctx, ward, cfg.PollInterval)
		})
		return nil
	})
	g.Go(func() error {
		select {
		case <-infra.MonitorExecutable(gctx):
			log.Errorln("executable file was modified")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Errorln("exited with error")
	}
}

func poll(ctx context.Context, ward *bot.Bot, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := ward.GetAndClearUpdates(ctx)
		if err != nil {
			var notifyErr *spam.NotifyError
			if errors.As(err, &notifyErr) {
				log.WithError(notifyErr).Warnln("some notifications failed")
			} else {
				log.WithError(err).Errorln("cant get updates")
				time.Sleep(interval)
				continue
			}
		}

		for _, command := range ward.DiscernCommands(updates) {
			if command.Command != "/ping" {
				continue
			}
			latency, err := ward.Ping(ctx)
			if err != nil {
				log.WithError(err).Errorln("cant ping")
				continue
			}
			chatID := fmt.Sprintf("%d", command.Message.Chat.ID)
			text := fmt.Sprintf("pong, %s", latency.Round(time.Millisecond))
			if _, err := ward.SendMessage(ctx, chatID, text, nil); err != nil {
				log.WithError(err).Errorln("cant reply to ping")
			}
		}

		time.Sleep(interval)
	}
}
