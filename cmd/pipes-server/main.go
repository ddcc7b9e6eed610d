// Package main is the entry point for the 3d-pipes simulation server.
// It only handles dependency injection and server initialization.
// NO simulation logic belongs here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lucas-Miller/3d-pipes/internal/config"
	"github.com/Lucas-Miller/3d-pipes/internal/events"
	"github.com/Lucas-Miller/3d-pipes/internal/infra/storage"
	"github.com/Lucas-Miller/3d-pipes/internal/network"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/logger"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/metrics"
	"github.com/Lucas-Miller/3d-pipes/internal/platform/optimization"
	"github.com/Lucas-Miller/3d-pipes/internal/sim"
)

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo  *storage.SQLiteEventRepository
	runID string
}

func (a *SQLitePersisterAdapter) Persist(event events.GeometryEvent) error {
	payload := map[string]interface{}{}
	if event.At != nil {
		payload["at"] = map[string]interface{}{"x": event.At.X, "y": event.At.Y, "z": event.At.Z}
	}
	if event.From != nil {
		payload["from"] = map[string]interface{}{"x": event.From.X, "y": event.From.Y, "z": event.From.Z}
	}
	if event.To != nil {
		payload["to"] = map[string]interface{}{"x": event.To.X, "y": event.To.Y, "z": event.To.Z}
	}

	storageEvent := storage.GeometryEvent{
		ID:         event.ID,
		RunID:      a.runID,
		Timestamp:  event.Timestamp,
		EventType:  string(event.Type),
		Generation: event.Generation,
		PipeID:     event.PipeID,
		Payload:    payload,
	}

	start := time.Now()
	err := a.repo.Append(context.Background(), storageEvent)
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty = defaults)")
	lowResource := flag.Bool("low-resource", false, "use minimal buffer/pool tuning (development)")
	flag.Parse()

	log.Println("[PIPES-SERVER] Initializing 3d-pipes simulation server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.Error("Invalid configuration: " + err.Error())
		os.Exit(1)
	}

	runID := "RUN_" + time.Now().Format("20060102-150405")
	tuning := optimization.DefaultConfig()
	if *lowResource {
		tuning = optimization.LowResourceConfig()
	}

	appLogger.Info("Initializing SQLite archive '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	db.SetMaxOpenConns(tuning.DBMaxOpenConns)
	db.SetMaxIdleConns(tuning.DBMaxIdleConns)
	eventRepo := storage.NewSQLiteEventRepository(db)
	genRepo := storage.NewSQLiteGenerationRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo, runID: runID}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)
	recorder := events.NewRecorder(eventLog)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	appLogger.Info("Bootstrapping simulation (seed " + strconv.FormatInt(seed, 10) + ")...")

	controller, err := sim.NewController(sim.Config{
		NumPipes:         cfg.NumPipes,
		Bounds:           cfg.GridBounds(),
		IdleResetSeconds: cfg.IdleResetSeconds,
		MaxSegmentLen:    cfg.MaxSegmentLen,
	}, sim.NewRNG(seed), recorder, appLogger)
	if err != nil {
		appLogger.Error("Failed to construct simulation: " + err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(eventLog, appLogger, tuning)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx)

	// Drive the simulation at the configured tick rate. The controller
	// itself never schedules; this loop is the external frame clock.
	go func() {
		fs := sim.NewFixedStep(cfg.TickRateHz)
		dt := fs.Step()
		frame := time.NewTicker(2 * time.Millisecond)
		defer frame.Stop()

		lastGen := controller.Generation()
		genStart := time.Now()
		sinceSummary := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-frame.C:
				for fs.ShouldStep() {
					start := time.Now()
					cellsBefore := controller.Grid().Len()
					controller.Tick(dt)
					metrics.Get().RecordTick(time.Since(start))

					gen := controller.Generation()
					if gen != lastGen {
						metrics.Get().RecordReset()
						// Close out the finished generation in the archive.
						_ = genRepo.Upsert(ctx, storage.GenerationSummary{
							RunID:      runID,
							Generation: lastGen,
							NumPipes:   cfg.NumPipes,
							StartedAt:  genStart,
							EndedAt:    time.Now(),
						})
						lastGen = gen
						genStart = time.Now()
					}

					cells := controller.Grid().Len()
					if cells > cellsBefore {
						metrics.Get().RecordGrowth(1, cells-cellsBefore)
					} else {
						metrics.Get().RecordGrowth(0, 0)
					}

					sinceSummary++
					if sinceSummary >= cfg.TickRateHz {
						sinceSummary = 0
						segments := 0
						for _, a := range controller.Agents() {
							segments += len(a.Segments())
						}
						_ = genRepo.Upsert(ctx, storage.GenerationSummary{
							RunID:       runID,
							Generation:  gen,
							NumPipes:    cfg.NumPipes,
							Segments:    segments,
							CellsFilled: cells,
							StartedAt:   genStart,
						})
					}
				}
			}
		}
	}()

	// Setup API routes
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	replayHandler := network.NewReplayHandler(eventLog, storage.NewReconstructor(eventRepo), runID, appLogger)
	replayHandler.RegisterRoutes(mux)

	controlAPI := network.NewControlAPI(controller, eventLog, tuning, appLogger)
	controlAPI.RegisterRoutes(mux)

	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","generation":%d}`, controller.GenerationSnapshot())
	})

	go func() {
		log.Println("[PIPES-SERVER] HTTP API & WS server listening on " + cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[PIPES-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[PIPES-SERVER] Shutting down...")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Renderer clients connect from any origin.
	},
}

// serveWs handles websocket requests from renderer clients.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
