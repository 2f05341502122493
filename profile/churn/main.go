// Profiling:
// go build ./profile/churn
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn mem.pprof

package main

import (
	"os"

	"github.com/TheBitDrifter/depot"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := depot.LoadConfig(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	rounds := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	if err := run(cfg, logger, rounds, iters, entities); err != nil {
		logger.Error().Err(err).Msg("churn failed")
	}
	p.Stop()
}

func run(cfg depot.StorageConfig, logger zerolog.Logger, rounds, iters, numEntities int) error {
	for range rounds {
		sto := depot.Factory.NewStorage(depot.WithConfig(cfg), depot.WithLogger(logger.Level(cfg.Level())))
		c1, err := depot.FactoryNewComponent[comp1](sto)
		if err != nil {
			return err
		}
		c2, err := depot.FactoryNewComponent[comp2](sto)
		if err != nil {
			return err
		}
		query := depot.Factory.NewQuery()
		cursor := depot.Factory.NewCursor(query.And(c1, c2), sto)

		for range iters {
			if _, err := sto.NewEntities(numEntities, c1.Descriptor(), c2.Descriptor()); err != nil {
				return err
			}
			for cursor.Next() {
				a, b := c1.GetFromCursor(cursor), c2.GetFromCursor(cursor)
				a.V += b.V
				a.W += b.W
				if err := sto.EnqueueDestroyEntities(cursor.Entity()); err != nil {
					return err
				}
			}
		}
		if err := sto.Close(); err != nil {
			return err
		}
	}
	return nil
}
