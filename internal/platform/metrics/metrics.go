// Package metrics provides observability for the night server: tick
// latencies for both simulation timers, intent throughput, websocket traffic
// and campaign outcomes.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and outcome counters.
type Collector struct {
	// Clock/power ticker
	ClockTicks      int64
	ClockLatencySum int64 // nanoseconds
	ClockLatencyMax int64

	// Movement scheduler
	ActorTicks      int64
	ActorLatencySum int64
	ActorLatencyMax int64

	// Player intents
	IntentsAccepted int64
	IntentsRejected int64

	// WebSocket
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Campaign outcomes
	NightsStarted int64
	NightsCleared int64
	GameOvers     int64
	Victories     int64

	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordClockTick records one clock/power tick.
func (c *Collector) RecordClockTick(latency time.Duration) {
	atomic.AddInt64(&c.ClockTicks, 1)
	atomic.AddInt64(&c.ClockLatencySum, int64(latency))
	if int64(latency) > atomic.LoadInt64(&c.ClockLatencyMax) {
		atomic.StoreInt64(&c.ClockLatencyMax, int64(latency))
	}
}

// RecordActorTick records one movement scheduler tick.
func (c *Collector) RecordActorTick(latency time.Duration) {
	atomic.AddInt64(&c.ActorTicks, 1)
	atomic.AddInt64(&c.ActorLatencySum, int64(latency))
	if int64(latency) > atomic.LoadInt64(&c.ActorLatencyMax) {
		atomic.StoreInt64(&c.ActorLatencyMax, int64(latency))
	}
}

// RecordIntent records a player intent, accepted or rejected.
func (c *Collector) RecordIntent(accepted bool) {
	if accepted {
		atomic.AddInt64(&c.IntentsAccepted, 1)
	} else {
		atomic.AddInt64(&c.IntentsRejected, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordNightStarted records a night beginning.
func (c *Collector) RecordNightStarted() { atomic.AddInt64(&c.NightsStarted, 1) }

// RecordNightCleared records a night survived to 6 AM.
func (c *Collector) RecordNightCleared() { atomic.AddInt64(&c.NightsCleared, 1) }

// RecordGameOver records a loss.
func (c *Collector) RecordGameOver() { atomic.AddInt64(&c.GameOvers, 1) }

// RecordVictory records a cleared final night.
func (c *Collector) RecordVictory() { atomic.AddInt64(&c.Victories, 1) }

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clockTicks := atomic.LoadInt64(&c.ClockTicks)
	actorTicks := atomic.LoadInt64(&c.ActorTicks)

	var clockAvg, actorAvg float64
	if clockTicks > 0 {
		clockAvg = float64(atomic.LoadInt64(&c.ClockLatencySum)) / float64(clockTicks) / 1e6 // ms
	}
	if actorTicks > 0 {
		actorAvg = float64(atomic.LoadInt64(&c.ActorLatencySum)) / float64(actorTicks) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"clock_ticker": map[string]interface{}{
			"count":          clockTicks,
			"avg_latency_ms": clockAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.ClockLatencyMax)) / 1e6,
		},

		"actor_ticker": map[string]interface{}{
			"count":          actorTicks,
			"avg_latency_ms": actorAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.ActorLatencyMax)) / 1e6,
		},

		"intents": map[string]interface{}{
			"accepted": atomic.LoadInt64(&c.IntentsAccepted),
			"rejected": atomic.LoadInt64(&c.IntentsRejected),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"campaign": map[string]interface{}{
			"nights_started": atomic.LoadInt64(&c.NightsStarted),
			"nights_cleared": atomic.LoadInt64(&c.NightsCleared),
			"game_overs":     atomic.LoadInt64(&c.GameOvers),
			"victories":      atomic.LoadInt64(&c.Victories),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP deddy_clock_ticks Total clock/power ticks\n")
		fmt.Fprintf(w, "# TYPE deddy_clock_ticks counter\n")
		fmt.Fprintf(w, "deddy_clock_ticks %d\n\n", atomic.LoadInt64(&c.ClockTicks))

		fmt.Fprintf(w, "# HELP deddy_actor_ticks Total movement scheduler ticks\n")
		fmt.Fprintf(w, "# TYPE deddy_actor_ticks counter\n")
		fmt.Fprintf(w, "deddy_actor_ticks %d\n\n", atomic.LoadInt64(&c.ActorTicks))

		fmt.Fprintf(w, "# HELP deddy_tick_latency_max_ms Maximum tick latency by ticker\n")
		fmt.Fprintf(w, "# TYPE deddy_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "deddy_tick_latency_max_ms{ticker=\"clock\"} %.2f\n", float64(atomic.LoadInt64(&c.ClockLatencyMax))/1e6)
		fmt.Fprintf(w, "deddy_tick_latency_max_ms{ticker=\"actors\"} %.2f\n\n", float64(atomic.LoadInt64(&c.ActorLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP deddy_intents_total Player intents by outcome\n")
		fmt.Fprintf(w, "# TYPE deddy_intents_total counter\n")
		fmt.Fprintf(w, "deddy_intents_total{outcome=\"accepted\"} %d\n", atomic.LoadInt64(&c.IntentsAccepted))
		fmt.Fprintf(w, "deddy_intents_total{outcome=\"rejected\"} %d\n\n", atomic.LoadInt64(&c.IntentsRejected))

		fmt.Fprintf(w, "# HELP deddy_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE deddy_ws_connections gauge\n")
		fmt.Fprintf(w, "deddy_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP deddy_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE deddy_ws_messages_total counter\n")
		fmt.Fprintf(w, "deddy_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "deddy_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		fmt.Fprintf(w, "# HELP deddy_nights_total Campaign outcomes\n")
		fmt.Fprintf(w, "# TYPE deddy_nights_total counter\n")
		fmt.Fprintf(w, "deddy_nights_total{outcome=\"started\"} %d\n", atomic.LoadInt64(&c.NightsStarted))
		fmt.Fprintf(w, "deddy_nights_total{outcome=\"cleared\"} %d\n", atomic.LoadInt64(&c.NightsCleared))
		fmt.Fprintf(w, "deddy_nights_total{outcome=\"game_over\"} %d\n", atomic.LoadInt64(&c.GameOvers))
		fmt.Fprintf(w, "deddy_nights_total{outcome=\"victory\"} %d\n", atomic.LoadInt64(&c.Victories))
	}
}
