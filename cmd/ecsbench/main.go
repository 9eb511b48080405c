// Command ecsbench boots a world, registers a handful of sample components
// and scheduler tasks, runs N ticks, and prints the resulting wave plan.
// Grounded on the teacher's bench/ and warehouse_bench/ directories, ported
// from a Go-benchmark harness to a standalone CLI using urfave/cli/v2 for
// flag parsing (picked up from prysmaticlabs-prysm's stack) instead of the
// standard library's flag package.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/TheBitDrifter/table"
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/log"
	"github.com/graniteforge/ecsengine/scheduler"
	"github.com/graniteforge/ecsengine/world"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }

func main() {
	app := &cli.App{
		Name:  "ecsbench",
		Usage: "run a synthetic ECS workload and print the scheduler's wave plan",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "entities", Value: 10_000, Usage: "number of entities to create"},
			&cli.IntFlag{Name: "ticks", Value: 60, Usage: "number of ticks to run"},
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "scheduler worker pool size"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := logrus.InfoLevel
	if c.Bool("verbose") {
		level = logrus.DebugLevel
	}
	logger := log.New(level)

	w := world.New(table.Factory.NewSchema(), c.Int("workers"), logger)
	defer w.Shutdown()

	reg := w.Entities().Components()
	posID := ecs.Register[position](reg, ecs.Unique, nil)
	velID := ecs.Register[velocity](reg, ecs.Unique, nil)

	entityCount := c.Int("entities")
	entities, err := w.Entities().CreateEntities(entityCount, ecs.NewSignature(posID, velID), nil)
	if err != nil {
		return fmt.Errorf("create entities: %w", err)
	}
	rnd := rand.New(rand.NewSource(1))
	for _, e := range entities {
		w.Entities().SetComponent(e, velID, velocity{X: rnd.Float64(), Y: rnd.Float64()})
	}

	w.Scheduler().Register(scheduler.TaskSchedulerElement{
		Name: "integrate_velocity",
		Task: func(ctx *scheduler.TaskContext) {
			wCtx := ctx.World.(*world.World)
			dt := wCtx.Input().DeltaTime.Seconds()
			for _, base := range wCtx.Entities().Query(ecs.Query{IncludeUnique: ecs.NewSignature(posID, velID)}) {
				for i := 0; i < base.Size(); i++ {
					pos := base.ValueAt(reg.MustMeta(posID).Element, i).(position)
					vel := base.ValueAt(reg.MustMeta(velID).Element, i).(velocity)
					pos.X += vel.X * dt
					pos.Y += vel.Y * dt
					base.SetValueAt(reg.MustMeta(posID).Element, i, pos)
				}
			}
		},
		Query: scheduler.NewTaskComponentQuery(
			[]scheduler.ComponentAccess{
				{Component: posID, Mode: scheduler.Write},
				{Component: velID, Mode: scheduler.Read},
			}, nil, nil, nil,
		),
		Group: scheduler.SimulateMid,
	})

	plan, err := w.Scheduler().Solve()
	if err != nil {
		return fmt.Errorf("solve schedule: %w", err)
	}
	taskCount := 0
	for _, wave := range plan.Waves {
		taskCount += len(wave.Tasks)
	}
	logger.Infof("solved %d tasks into %d wave(s)", taskCount, len(plan.Waves))
	for i, wave := range plan.Waves {
		names := make([]string, len(wave.Tasks))
		for j, t := range wave.Tasks {
			names[j] = t.Name
		}
		logger.Infof("wave %d [%s]: %v", i, wave.Group, names)
	}

	ticks := c.Int("ticks")
	start := time.Now()
	for i := 0; i < ticks; i++ {
		w.SetInput(world.FrameInput{DeltaTime: 16 * time.Millisecond})
		if err := w.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
	}
	logger.Infof("ran %d ticks over %d entities in %s", ticks, entityCount, time.Since(start))
	return nil
}
