// Command hanabot logs in to a hanabi-live server and plays at any table it
// is invited to.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabot/engine/agent"
	"github.com/jason-s-yu/hanabot/internal/cache"
	"github.com/jason-s-yu/hanabot/internal/client"
	"github.com/jason-s-yu/hanabot/internal/config"
	"github.com/jason-s-yu/hanabot/internal/database"
	"github.com/jason-s-yu/hanabot/internal/game"
)

const connectTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	if err := run(log); err != nil {
		log.WithError(err).Fatal("hanabot stopped")
	}
	log.Info("hanabot stopped")
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ConfigureLogger(log); err != nil {
		return err
	}
	policy, err := agent.Lookup(cfg.Policy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, closeRecorders, err := openRecorders(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRecorders()

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	cookie, err := client.Login(dialCtx, nil, cfg.BaseURL(), cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	cl, err := client.Dial(dialCtx, cfg.WebsocketURL(), cookie, cfg.SendBuffer, log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"host": cfg.Host, "policy": cfg.Policy}).Info("connected")

	lobby := client.NewLobby(cl, log)
	games := game.NewDispatcher(game.Options{
		Self:     lobby.Username,
		Policy:   policy,
		Sender:   cl,
		Recorder: recorder,
		Log:      log,
	})
	defer games.Close()
	return cl.Run(ctx, client.NewBot(lobby, games, log))
}

// openRecorders connects the optional history and persistence backends.
func openRecorders(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (game.Recorder, func(), error) {
	var (
		recs    game.MultiRecorder
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		recs = append(recs, cache.New(rdb, cfg.RedisStream))
		log.WithField("stream", cfg.RedisStream).Info("recording action history to redis")
	}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, pool.Close)
		store := database.New(pool)
		if err := store.Migrate(ctx); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		recs = append(recs, store)
		log.Info("persisting final game states to postgres")
	}

	if len(recs) == 0 {
		return nil, closeAll, nil
	}
	return recs, closeAll, nil
}
