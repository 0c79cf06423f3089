// Package main - agitator
// Headless load bot: connects N WebSocket guards to a running night server,
// spams plausible intents at them and counts what comes back. Used to shake
// out hub backpressure before frontend work starts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Stats tracks what the bots managed to do.
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Notices          int64
	Errors           int64
}

type intent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 10, "number of concurrent guards")
	interval := flag.Duration("interval", 250*time.Millisecond, "intent interval per guard")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	seed := flag.Int64("seed", 1, "rng seed")
	flag.Parse()

	fmt.Println("=========================================")
	fmt.Println("THE AGITATOR - night server load bot")
	fmt.Println("=========================================")
	fmt.Printf("Server:   %s\n", *serverURL)
	fmt.Printf("Guards:   %d\n", *numClients)
	fmt.Printf("Interval: %v\n", *interval)
	fmt.Printf("Duration: %v\n", *duration)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	var stats Stats
	var wg sync.WaitGroup
	for i := 0; i < *numClients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runGuard(ctx, *serverURL, *interval, rand.New(rand.NewSource(*seed+int64(id))), &stats)
		}(i)
	}
	wg.Wait()

	fmt.Println("=========================================")
	fmt.Printf("sent:     %d\n", atomic.LoadInt64(&stats.MessagesSent))
	fmt.Printf("received: %d\n", atomic.LoadInt64(&stats.MessagesReceived))
	fmt.Printf("notices:  %d\n", atomic.LoadInt64(&stats.Notices))
	fmt.Printf("errors:   %d\n", atomic.LoadInt64(&stats.Errors))

	if atomic.LoadInt64(&stats.Errors) > 0 {
		os.Exit(1)
	}
}

// runGuard drives one connection until the context expires.
func runGuard(ctx context.Context, url string, interval time.Duration, rng *rand.Rand, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Reader: count frames, notice the notices.
	go func() {
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
			var msg struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(frame, &msg) == nil && msg.Type == "NOTICE" {
				atomic.AddInt64(&stats.Notices, 1)
			}
		}
	}()

	send := func(in intent) bool {
		data, err := json.Marshal(in)
		if err != nil {
			return false
		}
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			return false
		}
		atomic.AddInt64(&stats.MessagesSent, 1)
		return true
	}

	send(intent{Type: "START"})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !send(randomIntent(rng)) {
				return
			}
		}
	}
}

// randomIntent picks something a frantic guard might do, including the
// occasional doomed attempt to pull up camera 2.
func randomIntent(rng *rand.Rand) intent {
	switch rng.Intn(6) {
	case 0:
		return intent{Type: "TOGGLE_DOOR", Payload: map[string]string{"side": "LEFT"}}
	case 1:
		return intent{Type: "TOGGLE_DOOR", Payload: map[string]string{"side": "RIGHT"}}
	case 2:
		return intent{Type: "TOGGLE_MONITOR"}
	case 3:
		return intent{Type: "SELECT_CAMERA", Payload: map[string]int{"camera": rng.Intn(5)}}
	case 4:
		return intent{Type: "TOGGLE_SOUND"}
	default:
		// Covers the menu after a game over so the bots keep playing.
		if rng.Intn(2) == 0 {
			return intent{Type: "RESTART"}
		}
		return intent{Type: "START"}
	}
}
