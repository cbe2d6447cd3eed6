// Command orderdesk serves the stub order-management backend for local
// development: point the checkout CLI's dev_tunnel_url at it.
package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/nzmint/bullion-checkout/internal/orderdesk"
	"github.com/nzmint/bullion-checkout/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger(slog.LevelInfo, false)

	addr := getEnv("ORDERDESK_ADDR", ":8090")
	providers := strings.Split(getEnv("ORDERDESK_PROVIDERS", "POLi,BLINK,STRIPE,ALIPAY"), ",")

	// ORDERDESK_READY_AFTER simulates slow providers, e.g. "BLINK=3,STRIPE=2"
	// makes BLINK's link appear on the third status poll.
	readyAfter, err := parseReadyAfter(getEnv("ORDERDESK_READY_AFTER", ""))
	if err != nil {
		log.Fatalf("parse ORDERDESK_READY_AFTER: %v", err)
	}

	handler := orderdesk.NewHandler(providers, readyAfter)
	router := orderdesk.NewRouter(handler)

	log.Printf("orderdesk stub running on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func parseReadyAfter(spec string) (map[string]int, error) {
	if spec == "" {
		return nil, nil
	}

	out := make(map[string]int)
	for _, pair := range strings.Split(spec, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, errInvalidPair(pair)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, errInvalidPair(pair)
		}
		out[name] = n
	}
	return out, nil
}

type errInvalidPair string

func (e errInvalidPair) Error() string {
	return "invalid provider=polls pair: " + string(e)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
