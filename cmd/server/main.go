package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/memoryscramble/board"
	"example.com/memoryscramble/internal/boardfile"
	"example.com/memoryscramble/internal/eventbus"
	"example.com/memoryscramble/internal/httpapi"
	"example.com/memoryscramble/internal/live"
	"example.com/memoryscramble/internal/scheduler"
)

func main() {
	boardPath := flag.String("board", getenv("BOARD_FILE", ""), "path to a board file (spec.md §6 format)")
	addr := flag.String("addr", getenv("ADDR", ":8080"), "address to listen on")
	natsURL := flag.String("nats", getenv("NATS_URL", "nats://localhost:4222"), "event bus broker URL")
	resetSchedule := flag.String("reset-schedule", getenv("RESET_SCHEDULE", ""), "cron expression for periodic Board.Reset, empty disables it")
	keepAliveSchedule := flag.String("keepalive-schedule", getenv("KEEPALIVE_SCHEDULE", "@every 30s"), "cron expression for the keep-alive heartbeat")
	allowOrigins := flag.String("allow-origins", getenv("ORIGIN_ALLOWLIST", ""), "comma-separated list of origins allowed to open a /ws connection, empty allows any")
	flag.Parse()

	b, err := loadBoard(*boardPath)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	bus := eventbus.Connect(*natsURL)
	defer bus.Close()

	sched := scheduler.New()
	if *resetSchedule != "" {
		if _, err := sched.ScheduleReset(*resetSchedule, b, func(at time.Time) {
			bus.PublishReset(*boardPath, at)
		}); err != nil {
			log.Fatalf("server: invalid reset schedule %q: %v", *resetSchedule, err)
		}
	}
	if _, err := sched.ScheduleKeepAlive(*keepAliveSchedule, func(at time.Time) {
		bus.PublishKeepalive(*boardPath, at)
	}); err != nil {
		log.Fatalf("server: invalid keepalive schedule %q: %v", *keepAliveSchedule, err)
	}
	sched.Start()
	defer sched.Stop()

	api := httpapi.New(b)

	var origins []string
	if *allowOrigins != "" {
		origins = strings.Split(*allowOrigins, ",")
	}
	hub := live.NewHub(b, origins)
	api.Engine().Any("/ws", gin.WrapH(hub))

	log.Printf("server listening on %s", *addr)
	if err := api.Run(*addr); err != nil {
		log.Fatal(err)
	}
}

// loadBoard constructs a board.Board either from a board file, when given,
// or a small built-in default grid, useful for smoke-testing the server
// without preparing an input file first.
func loadBoard(path string) (*board.Board, error) {
	if path == "" {
		return board.New(2, 2, []string{"A", "A", "B", "B"})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, cols, tokens, err := boardfile.Parse(f)
	if err != nil {
		return nil, err
	}
	return board.New(rows, cols, tokens)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
