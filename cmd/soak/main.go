// Package main - soak
// Headless soak runner: drives the simulation flat out for a number of
// generations and reports growth statistics per generation.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
	"github.com/Lucas-Miller/3d-pipes/internal/sim"
)

// genStats accumulates per-generation numbers from observer callbacks.
type genStats struct {
	Generation int
	Joints     int
	Segments   int
	Ticks      int
}

// countingObserver implements sim.Observer and tallies geometry per
// generation. All callbacks arrive from the single tick loop.
type countingObserver struct {
	current  *genStats
	finished []genStats
}

func (o *countingObserver) GenerationStarted(generation int) {
	if o.current != nil {
		o.finished = append(o.finished, *o.current)
	}
	o.current = &genStats{Generation: generation}
}

func (o *countingObserver) JointCreated(pipeID int, at pipe.Vec3) { o.current.Joints++ }

func (o *countingObserver) SegmentCreated(pipeID int, from, to pipe.Vec3) { o.current.Segments++ }

func (o *countingObserver) PipeRemoved(pipeID int) {}

func main() {
	seed := flag.Int64("seed", 1, "random seed")
	pipes := flag.Int("pipes", 5, "pipes per generation")
	generations := flag.Int("generations", 10, "generations to run")
	extent := flag.Int("extent", 10, "bounds half-extent (cube [-e,e]^3)")
	maxTicks := flag.Int("max-ticks", 5_000_000, "safety cap on total ticks")
	flag.Parse()

	fmt.Println("=========================================")
	fmt.Println("3d-pipes soak runner")
	fmt.Println("=========================================")
	fmt.Printf("Seed: %d  Pipes: %d  Generations: %d  Extent: %d\n",
		*seed, *pipes, *generations, *extent)
	fmt.Println("=========================================")

	bounds := pipe.Bounds{
		Min: pipe.Vec3{X: -*extent, Y: -*extent, Z: -*extent},
		Max: pipe.Vec3{X: *extent, Y: *extent, Z: *extent},
	}

	obs := &countingObserver{}
	controller, err := sim.NewController(sim.Config{
		NumPipes: *pipes,
		Bounds:   bounds,
	}, sim.NewRNG(*seed), obs, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "soak: "+err.Error())
		os.Exit(1)
	}

	// Nominal 60 Hz dt; the soak loop does not sleep between ticks.
	const dt = 1.0 / 60.0

	start := time.Now()
	ticks := 0
	for controller.Generation() <= *generations && ticks < *maxTicks {
		controller.Tick(dt)
		ticks++
		obs.current.Ticks++
	}
	elapsed := time.Since(start)

	if obs.current != nil && obs.current.Ticks > 0 {
		obs.finished = append(obs.finished, *obs.current)
	}

	fmt.Printf("\n%-12s %-8s %-10s %-8s\n", "GENERATION", "JOINTS", "SEGMENTS", "TICKS")
	for _, g := range obs.finished {
		fmt.Printf("%-12d %-8d %-10d %-8d\n", g.Generation, g.Joints, g.Segments, g.Ticks)
	}

	fmt.Printf("\nTotal: %d ticks in %v (%.0f ticks/sec)\n",
		ticks, elapsed.Round(time.Millisecond), float64(ticks)/elapsed.Seconds())
}
