// Demo gateway: a seeded in-memory store, a demo user token printed at
// startup, and a synthetic status flipper standing in for the external
// check scheduler.
//
// Run it, then connect with any websocket client:
//
//	websocat ws://localhost:4000/ws
//	{"event":"authenticate","data":{"token":"<printed token>"}}
//	{"event":"subscribe:monitor","data":{"monitorId":"m-checkout"}}
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	"github.com/upwatch/uplink"
)

const (
	demoPort       = 4000
	demoUserSecret = "demo-user-secret"
	flipInterval   = 5 * time.Second
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := uplink.NewMemoryStore()
	store.PutWebsite(uplink.Website{ID: "w-shop", Name: "Shop", URL: "https://shop.example.com", OwnerID: "u-demo"})
	store.PutMonitor(uplink.Monitor{ID: "m-checkout", WebsiteID: "w-shop", Name: "Checkout", URL: "https://shop.example.com/checkout", Status: "up", Uptime: 99.5})
	store.PutMonitor(uplink.Monitor{ID: "m-search", WebsiteID: "w-shop", Name: "Search", URL: "https://shop.example.com/search", Status: "up", Uptime: 97.2})

	gw, err := uplink.New(
		uplink.WithStore(store),
		uplink.WithSecrets(uplink.Secrets{User: demoUserSecret}),
		uplink.WithPort(demoPort),
		uplink.WithAllowedOrigins("*"),
		uplink.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create gateway", "error", err)
		os.Exit(1)
	}

	// a custom event, registered before any client connects
	gw.RegisterEvent("ping", func(_ context.Context, _ uplink.Conn, _ json.RawMessage) (any, error) {
		return map[string]string{"reply": "pong"}, nil
	})

	token, err := demoToken()
	if err != nil {
		slog.Error("failed to sign demo token", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("  UpLink demo on ws://localhost:%d/ws\n", demoPort)
	fmt.Printf("  Demo user token (u-demo):\n  %s\n", token)
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gw.Start(ctx) })
	g.Go(func() error { return flipStatuses(ctx, gw) })

	if err := g.Wait(); err != nil {
		slog.Error("demo stopped with error", "error", err)
		os.Exit(1)
	}
}

// flipStatuses plays the role of the check scheduler, toggling the
// checkout monitor between up and down and alerting on each transition
// to down.
func flipStatuses(ctx context.Context, gw *uplink.Gateway) error {
	ticker := time.NewTicker(flipInterval)
	defer ticker.Stop()

	down := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			down = !down

			status := "up"
			if down {
				status = "down"
			}

			n := gw.BroadcastMonitorEvent("m-checkout", map[string]any{
				"status":    status,
				"checkedAt": time.Now().UTC().Format(time.RFC3339),
			})
			slog.Info("status update pushed", "monitor", "m-checkout", "status", status, "delivered", n)

			if down {
				gw.BroadcastAlert("m-checkout", map[string]any{
					"status":  "down",
					"message": "checkout stopped responding",
				})
			}
		}
	}
}

// demoToken signs a user-domain token for the seeded account.
func demoToken() (string, error) {
	claims := jwt.MapClaims{
		"userId": "u-demo",
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(demoUserSecret))
}
