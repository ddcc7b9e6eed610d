// Package sim contains the growth simulation: occupancy grid, growth
// policy, pipe agents, and the controller that ticks them. This is the
// heartbeat of 3d-pipes.
//
// ARCHITECTURAL RULE: the controller does not talk to renderers, sockets,
// or storage. It reports geometry through the Observer interface and the
// rest of the system reacts.
package sim

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/Lucas-Miller/3d-pipes/internal/domain/pipe"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/logger"
)

// DefaultNumPipes is the number of agents spawned per generation when
// the configuration does not say otherwise.
const DefaultNumPipes = 5

// DefaultIdleResetSeconds is how long the simulation may sit with zero
// growth across all agents before the generation is torn down.
const DefaultIdleResetSeconds = 3.0

// Config carries the construction inputs for a Controller.
type Config struct {
	NumPipes         int
	Bounds           pipe.Bounds
	IdleResetSeconds float64
	MaxSegmentLen    int
}

// Controller owns the set of live agents and the single occupancy grid
// for the run. It advances all agents one step per Tick, tracks idle
// time, and triggers a full reset when growth stalls.
type Controller struct {
	cfg    Config
	grid   *OccupancyGrid
	policy *GrowthPolicy
	rng    Rand
	obs    Observer
	log    *logger.Logger

	agents       []*Agent
	idle         float64
	generation   int
	genShared    atomic.Int64
	resetRequest atomic.Bool
	nextPipeID   int
}

// NewController validates the configuration, spawns the first
// generation of agents, and returns the controller ready to tick.
func NewController(cfg Config, rng Rand, obs Observer, log *logger.Logger) (*Controller, error) {
	if cfg.NumPipes <= 0 {
		return nil, fmt.Errorf("sim: num pipes must be positive, got %d", cfg.NumPipes)
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if cfg.Bounds.CellCount() < cfg.NumPipes {
		return nil, fmt.Errorf("sim: bounds hold %d cells, cannot spawn %d pipes",
			cfg.Bounds.CellCount(), cfg.NumPipes)
	}
	if cfg.IdleResetSeconds <= 0 {
		cfg.IdleResetSeconds = DefaultIdleResetSeconds
	}
	if cfg.MaxSegmentLen <= 0 {
		cfg.MaxSegmentLen = DefaultMaxSegmentLen
	}
	if rng == nil {
		return nil, fmt.Errorf("sim: nil random source")
	}
	if obs == nil {
		obs = NopObserver{}
	}

	c := &Controller{
		cfg:        cfg,
		grid:       NewOccupancyGrid(),
		policy:     NewGrowthPolicy(cfg.Bounds, cfg.MaxSegmentLen),
		rng:        rng,
		obs:        obs,
		log:        log,
		generation: 1,
	}
	c.spawnGeneration()
	return c, nil
}

// Tick advances every agent one growth attempt. dt is the simulated
// seconds since the previous tick, supplied by the host loop; it is
// accepted as-is. When no agent grows for longer than the idle
// threshold, the generation is reset synchronously inside this call —
// no agent ever observes a half-reset grid.
func (c *Controller) Tick(dt float64) {
	if c.resetRequest.Swap(false) {
		c.reset()
		return
	}

	grew := false
	for _, a := range c.agents {
		if a.Tick(c.policy, c.grid, c.rng, c.obs) {
			grew = true
		}
	}

	if grew {
		c.idle = 0
		return
	}

	c.idle += dt
	if c.idle > c.cfg.IdleResetSeconds {
		c.reset()
	}
}

// reset tears down the current generation and spawns a fresh one with
// the same configuration but new random state.
func (c *Controller) reset() {
	for _, a := range c.agents {
		c.obs.PipeRemoved(a.ID)
	}
	c.agents = nil
	c.grid.Clear()
	c.generation++
	c.idle = 0
	c.spawnGeneration()

	if c.log != nil {
		c.log.Event("GENERATION_RESET", "CONTROLLER",
			"Growth stalled; generation "+strconv.Itoa(c.generation)+" spawned")
	}
}

func (c *Controller) spawnGeneration() {
	c.genShared.Store(int64(c.generation))
	c.obs.GenerationStarted(c.generation)
	for i := 0; i < c.cfg.NumPipes; i++ {
		c.nextPipeID++
		a := SpawnAgent(c.nextPipeID, c.cfg.Bounds, c.grid, c.rng, c.obs)
		c.agents = append(c.agents, a)
	}
}

// RequestReset asks the tick loop to tear down the current generation
// on its next tick, without waiting for the idle threshold. Safe to
// call from any goroutine.
func (c *Controller) RequestReset() { c.resetRequest.Store(true) }

// Generation returns the current generation number, starting at 1.
func (c *Controller) Generation() int { return c.generation }

// GenerationSnapshot is the race-free view of the generation number for
// readers outside the tick loop (health endpoint, debug tooling).
func (c *Controller) GenerationSnapshot() int { return int(c.genShared.Load()) }

// IdleSeconds returns the accumulated idle time since the last growth.
func (c *Controller) IdleSeconds() float64 { return c.idle }

// Agents returns the live agents of the current generation.
func (c *Controller) Agents() []*Agent { return c.agents }

// Grid exposes the occupancy grid for inspection (tests, debug API).
func (c *Controller) Grid() *OccupancyGrid { return c.grid }
