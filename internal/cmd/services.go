package main

import (
	"database/sql"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/accounts"
	"github.com/mcdev12/tileduel/internal/arbiter"
	"github.com/mcdev12/tileduel/internal/broadcast"
	"github.com/mcdev12/tileduel/internal/coordinator"
	"github.com/mcdev12/tileduel/internal/countdown"
	"github.com/mcdev12/tileduel/internal/gamestore"
	"github.com/mcdev12/tileduel/internal/gateway"
	"github.com/mcdev12/tileduel/internal/matchmaking"
	"github.com/mcdev12/tileduel/internal/questions"
	"github.com/mcdev12/tileduel/internal/ranking"
	"github.com/mcdev12/tileduel/internal/session"
)

type Services struct {
	Handler   *gateway.Handler
	Publisher *ranking.JetStreamPublisher
}

func setupServices(database *sql.DB, config *Config) (*Services, error) {
	// Repository layer over Postgres.
	accountsRepo := accounts.NewRepository(database)
	rankingRepo := ranking.NewRepository(database)
	questionBank := questions.NewBank(database)
	questionSource := questions.NewSource(questionBank)

	// Optional completion events.
	var publisher *ranking.JetStreamPublisher
	var events ranking.EventPublisher
	if config.Events.Enabled {
		jsCfg := ranking.DefaultJetStreamConfig()
		if config.Events.NATSURL != "" {
			jsCfg.URL = config.Events.NATSURL
		}
		p, err := ranking.NewJetStreamPublisher(jsCfg)
		if err != nil {
			return nil, err
		}
		publisher = p
		events = p
		log.Info().Str("url", jsCfg.URL).Msg("completion events enabled")
	}

	// In-memory coordinator core.
	clock := clockwork.NewRealClock()
	store := gamestore.New()
	registry := session.NewRegistry()

	engine := broadcast.NewEngine(registry, store, questionSource)
	scheduler := countdown.NewSchedulerConfig(store, engine, clock, config.Game.CountdownStart, config.countdownInterval())
	engine.SetCountdownStarter(scheduler)

	queue := matchmaking.NewQueue(store, registry, engine, clock)
	arb := arbiter.NewArbiterDecay(store, registry, clock, config.Game.ScoreDecayMS)
	finalizer := ranking.NewFinalizer(rankingRepo, events, store)

	coord := coordinator.New(accountsRepo, queue, store, registry, arb, engine, scheduler, finalizer)

	streams := gateway.StreamConfig{
		KeepaliveInterval: time.Duration(config.Streams.KeepaliveSec) * time.Second,
		WriteTimeout:      time.Duration(config.Streams.WriteTimeoutSec) * time.Second,
	}
	handler := gateway.NewHandler(coord, accountsRepo, rankingRepo, questionSource, streams)

	return &Services{Handler: handler, Publisher: publisher}, nil
}
