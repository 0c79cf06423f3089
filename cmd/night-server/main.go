// Package main is the entry point for the Deddy's Night game server.
// It only handles dependency injection and server initialization.
// NO game logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/config"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/engine"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/events"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/network"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/logger"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/metrics"
)

func main() {
	configPath := flag.String("config", "", "optional TOML tuning file")
	seed := flag.Int64("seed", 0, "rng seed, 0 = time-based")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("[NIGHT-SERVER] %v", err)
		}
		cfg = loaded
	}

	appLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("[NIGHT-SERVER] %v", err)
	}
	defer appLogger.Sync()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping event log and night director", zap.Int64("seed", *seed))
	eventLog := events.NewEventLog()
	director := engine.NewDirector(cfg, appLogger, eventLog, rng)
	director.Start(ctx)

	appLogger.Info("Bootstrapping WebSocket hub")
	hub := network.NewHub(appLogger, director)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog, cfg.Night.TickInterval)
	hub.StartSnapshotStream(ctx, cfg.Night.TickInterval)

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		state := director.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"state":      state,
			"hour_label": state.HourLabel(),
			"sound_on":   director.SoundOn(),
		})
	})

	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		appLogger.Info("HTTP API & WS server listening", zap.String("addr", cfg.Server.BindAddress))
		if err := http.ListenAndServe(cfg.Server.BindAddress, nil); err != nil {
			log.Fatalf("[NIGHT-SERVER] server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the game frontend is served from its own dev origin
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection", zap.Error(err))
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
