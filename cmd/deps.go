package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/explain"
	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/logging"
	"github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/store"
)

const redisPingTimeout = 2 * time.Second

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openRedis connects to the configured Redis. It returns nil when none is
// configured.
func openRedis(ctx context.Context) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// redisBoard wraps client, or returns nil without one.
func redisBoard(client *redis.Client) *leaderboard.RedisBoard {
	if client == nil {
		return nil
	}
	return leaderboard.NewRedisBoard(client)
}

// newPublisher builds the score event bus with a logrus-backed logger.
func newPublisher() (*events.Publisher, error) {
	return events.NewPublisher(cfg.EventsConfig(), logging.NewWatermillAdapter(logrus.StandardLogger()))
}

// newProvider builds the configured LLM provider. It returns nil when no
// provider is configured or discoverable.
func newProvider(ctx context.Context, recorder llm.RequestRecorder) (llm.Provider, error) {
	lc := cfg.LLM
	if !lc.Discover() {
		return nil, nil
	}
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	return llm.NewProvider(ctx, lc, recorder)
}

// explainerFactory returns a per-session explainer constructor, or nil when
// no LLM provider is available.
func explainerFactory(ctx context.Context, recorder llm.RequestRecorder) func() session.Explainer {
	provider, err := newProvider(ctx, recorder)
	if err != nil {
		logrus.WithError(err).Warn("LLM provider not configured, worked explanations are unavailable")
		return nil
	}
	if provider == nil {
		return nil
	}
	ec := explain.DefaultConfig()
	ec.Timeout = cfg.ExplainTimeout()
	if cfg.Explain.MaxTokens > 0 {
		ec.MaxTokens = cfg.Explain.MaxTokens
	}
	return func() session.Explainer {
		return explain.NewService(provider, ec)
	}
}

// principalFromFlags reads --name and --guest. It returns nil when neither
// is set.
func principalFromFlags(cmd *cobra.Command, now time.Time) (*identity.Principal, error) {
	name, _ := cmd.Flags().GetString("name")
	guest, _ := cmd.Flags().GetBool("guest")
	switch {
	case guest && name != "":
		return nil, fmt.Errorf("--name and --guest are mutually exclusive")
	case guest:
		p := identity.Guest(now)
		return &p, nil
	case name != "":
		p, err := identity.Named(name)
		if err != nil {
			return nil, fmt.Errorf("invalid name %q: %w", name, err)
		}
		return &p, nil
	}
	return nil, nil
}

func newTokenIssuer() (*identity.TokenIssuer, error) {
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("MATHDRILL_JWT_SECRET (or auth.secret) is required")
	}
	return identity.NewTokenIssuer([]byte(cfg.Auth.Secret), cfg.TokenTTL())
}
