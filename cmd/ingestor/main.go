package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/adapters/places"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("hostaway", cfg.HostawayBase).
		Int("workers", cfg.Workers).
		Int("places", len(cfg.PlaceBindings)).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	haClient, err := hostaway.New(cfg.HostawayBase, cfg.HostawayKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
	}
	plClient, err := places.New(cfg.PlacesBase, cfg.PlacesKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Places client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(haClient, plClient, repo, cache)

	if cfg.SnapshotPath != "" {
		snap, err := shared.LoadSnapshot(cfg.SnapshotPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SnapshotPath).Msg("snapshot load failed")
		}
		ing.SetSnapshot(snap)
		log.Info().Int("reviews", len(snap.Result)).Msg("snapshot loaded")
	}

	// Hostaway first: one call covers the whole portfolio.
	n, err := ing.IngestHostaway(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("hostaway ingest failed")
	} else {
		observability.ObserveIngest("hostaway", n)
		log.Info().Int("reviews", n).Msg("hostaway ingest ok")
	}

	// Google places fan out under a bounded worker pool.
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, b := range cfg.PlaceBindings {
		b := b

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(binding shared.PlaceBinding) {
			defer wg.Done()
			defer sem.Release(int64(1))

			n, err := ing.IngestGooglePlace(ctx, binding.PlaceID, binding.ListingName)
			if err != nil {
				log.Warn().Str("placeId", binding.PlaceID).Err(err).Msg("ingest failed")
				return
			}
			observability.ObserveIngest("google", n)
			log.Info().Str("placeId", binding.PlaceID).Int("reviews", n).Msg("ingest ok")
		}(b)
	}

	wg.Wait()
	log.Info().Msg("ingestion completed")
}
