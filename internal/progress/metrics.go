package progress

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type progressMetricsCollection struct {
	xpAwarded metric.Int64Counter
	levelUps  metric.Int64Counter
	unlocks   metric.Int64Counter
}

var metrics progressMetricsCollection

func init() {
	const name = "rigveda-explorer/progress"
	meter := otel.Meter(name)

	xpAwarded, err := meter.Int64Counter(
		"progress/xp_awarded",
		metric.WithDescription("Total xp awarded to players, including achievement rewards"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create xp awarded metric: %w", err))
	}

	levelUps, err := meter.Int64Counter(
		"progress/level_ups",
		metric.WithDescription("Number of levels gained by players"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create level ups metric: %w", err))
	}

	unlocks, err := meter.Int64Counter(
		"progress/unlocks",
		metric.WithDescription("Number of deities, badges, achievements and paths unlocked"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create unlocks metric: %w", err))
	}

	metrics = progressMetricsCollection{
		xpAwarded: xpAwarded,
		levelUps:  levelUps,
		unlocks:   unlocks,
	}
}
