package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the leaderboard API and websocket practice sessions",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MATHDRILL_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	tokens, err := newTokenIssuer()
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rdb, err := openRedis(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	cache := redisBoard(rdb)
	board := leaderboard.NewService(st.UserRepo(), st.EventRepo(), cache)

	pub, err := newPublisher()
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer pub.Close()

	srv, err := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         tokens,
		Users:          st.UserRepo(),
		Events:         st.EventRepo(),
		Board:          board,
		Publisher:      pub,
		Generator:      problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig()),
		NewExplainer:   explainerFactory(ctx, st.EventRepo()),
		ExplainTimeout: cfg.ExplainTimeout(),
	})
	if err != nil {
		return err
	}

	projector := leaderboard.NewProjector(st.UserRepo(), st.EventRepo(), cache, srv.BoardChanged)
	if err := pub.Subscribe(ctx, projector.Handle); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"addr":   cfg.Server.Addr,
		"redis":  cache != nil,
		"events": eventsDriver(),
	}).Info("Starting mathdrill server")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func eventsDriver() string {
	if cfg.Events.Driver == "" {
		return events.DriverGoChannel
	}
	return cfg.Events.Driver
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
