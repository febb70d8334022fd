package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/logging"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(c *cobra.Command) {
	c.Flags().String("name", "", "Player name (skips the welcome screen)")
	c.Flags().Bool("guest", false, "Use a guest identity; scores are not saved")
}

// runPlay opens the store, builds dependencies, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()

	principal, err := principalFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(dbPath), "mathdrill.log")
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	if err := logging.Init(cfg.LogLevel, logFile); err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rdb, err := openRedis(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, leaderboards read from the database")
	}
	if rdb != nil {
		defer rdb.Close()
	}
	cache := redisBoard(rdb)

	deps := tui.Deps{
		Principal:      principal,
		Users:          st.UserRepo(),
		Events:         st.EventRepo(),
		Board:          leaderboard.NewService(st.UserRepo(), st.EventRepo(), cache),
		Generator:      problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig()),
		NewExplainer:   explainerFactory(ctx, st.EventRepo()),
		ExplainTimeout: cfg.ExplainTimeout(),
	}

	// Score events keep the Redis boards current. With Kafka they also
	// reach a running server.
	if cache != nil || cfg.Events.Driver == events.DriverKafka {
		pub, err := newPublisher()
		if err != nil {
			logrus.WithError(err).Warn("Event bus unavailable, score events are not published")
		} else {
			defer pub.Close()
			deps.Publisher = pub
			if cache != nil && cfg.Events.Driver != events.DriverKafka {
				projector := leaderboard.NewProjector(st.UserRepo(), st.EventRepo(), cache, nil)
				if err := pub.Subscribe(ctx, projector.Handle); err != nil {
					logrus.WithError(err).Warn("Leaderboard projector not subscribed")
				}
			}
		}
	}

	return tui.Run(ctx, deps)
}
