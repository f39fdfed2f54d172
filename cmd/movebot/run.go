package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"movebot/internal/bot"
	"movebot/internal/config"
	"movebot/internal/dispatch"
	"movebot/internal/httpapi"
	"movebot/internal/i18n"
	"movebot/internal/logging"
	"movebot/internal/scheduler"
	"movebot/internal/session"
	"movebot/internal/workout"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot: schedule workouts, answer commands, record completions",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolvedConfigPath(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer logging.Install(logger)()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := loadLocales(cfg); err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.String("path", cfg.Catalog.Path), zap.Int("exercises", cat.Size()))

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	api.Debug = cfg.Telegram.Debug

	botName := cfg.Telegram.BotName
	if botName == "" {
		botName = api.Self.UserName
	}
	lang := i18n.ParseLanguage(cfg.Language)
	logger.Info("authorized", zap.String("bot", botName), zap.String("language", string(lang)))

	state := session.New()
	disp := dispatch.New(cat, state, st, dispatch.Options{
		BotName:        botName,
		Language:       lang,
		IncludePending: cfg.Stats.IncludePending,
	}, logger.Named("dispatch"))

	tg := bot.New(api, disp, bot.Options{
		ChannelID: cfg.Telegram.ChannelID,
		BotName:   botName,
		Workers:   cfg.Telegram.Workers,
	}, logger.Named("bot"))

	seed := uint64(time.Now().UnixNano())
	counts := workout.Counts{Strength: cfg.Workout.StrengthCount, Mobility: cfg.Workout.MobilityCount}
	cycle := scheduler.NewCycle(cat, counts, state, st, workout.NewSource(seed), logger.Named("cycle"))

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}
	runner := scheduler.NewRunner(cycle, tg, scheduler.RunnerOptions{
		Hours: scheduler.ActiveHours{
			From:     cfg.Schedule.ActiveFrom,
			To:       cfg.Schedule.ActiveTo,
			Weekends: cfg.Schedule.Weekends,
		},
		Schedule:       scheduler.NewRandomInterval(cfg.Schedule.MinInterval(), cfg.Schedule.MaxInterval(), workout.NewSource(seed+1)),
		Location:       loc,
		Header:         i18n.T(i18n.KeyWorkoutHeader, lang),
		RunImmediately: cfg.Schedule.RunImmediately,
	}, logger.Named("scheduler"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tg.Start(gctx) })
	g.Go(func() error { return runner.Run(gctx) })
	if cfg.HTTP.Addr != "" {
		srv := httpapi.New(state, st, cfg.Stats.IncludePending, logger.Named("http"))
		g.Go(func() error { return srv.Serve(gctx, cfg.HTTP.Addr) })
	}

	err = g.Wait()

	// Persist completions recorded since the last cycle.
	if n, ferr := cycle.Flush(context.WithoutCancel(ctx)); ferr != nil {
		logger.Error("final flush failed", zap.Int("pending", len(state.Pending())), zap.Error(ferr))
	} else if n > 0 {
		logger.Info("final flush", zap.Int("records", n))
	}

	logger.Info("shutdown complete")
	return err
}
