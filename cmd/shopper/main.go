package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boxoffice/internal/auth"
	"boxoffice/internal/checkout"
	"boxoffice/internal/events"
	"boxoffice/internal/inventory"
	"boxoffice/internal/realtime"
	"boxoffice/internal/selection"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

// shopper walks one seat selection against a running box office: it loads a sector,
// toggles the requested seats and optionally hands them off to checkout.
func main() {
	var (
		eventID  = flag.String("event", "", "event id")
		sectorID = flag.String("sector", "", "sector name")
		seatList = flag.String("seats", "", "comma separated seat ids to toggle, e.g. A-1,A-2")
		token    = flag.String("token", "", "access token of a logged-in shopper")
		resume   = flag.String("resume", "", "resume state returned by the login redirect")
		buy      = flag.Bool("checkout", false, "hand the selection off to checkout")
		settle   = flag.Duration("settle", time.Second, "time to wait for live updates before printing")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.New(logger.Options{Level: cfg.LogLevel, Output: os.Stderr})
	logger.SetDefault(appLogger)

	issuer := auth.NewIssuer(cfg.JWT)

	var userID string
	if *token != "" {
		claims, err := issuer.ValidateAccessToken(*token)
		if err != nil {
			log.Fatalf("Invalid access token: %v", err)
		}
		userID = claims.UserID
	}

	var pending *selection.PendingSelection
	if *resume != "" {
		p, err := issuer.ParseResumeToken(*resume)
		if err != nil {
			log.Fatalf("Invalid resume state: %v", err)
		}
		pending = &p
		if *eventID == "" {
			*eventID, *sectorID = p.EventID, p.SectorID
		}
	}
	if *eventID == "" || *sectorID == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sf := cfg.Storefront
	loaderOpts := []inventory.Option{inventory.WithLogger(appLogger)}
	if shapes, err := eventShapes(ctx, sf, *eventID, *token); err != nil {
		appLogger.Warn("Event layout unavailable, demo seats use the default grid", "error", err)
	} else {
		loaderOpts = append(loaderOpts, inventory.WithShapes(shapes))
	}

	session := selection.Open(ctx, selection.SessionConfig{
		EventID:  *eventID,
		SectorID: *sectorID,
		UserID:   userID,
		MaxSeats: sf.MaxSeatsPerUser,
		Resume:   pending,
	}, selection.Deps{
		Inventory: inventory.NewLoader(sf, loaderOpts...),
		Channel: realtime.NewChannel(sf.WebSocketURL, sf.ConnectTimeout,
			realtime.WithBearerToken(*token),
			realtime.WithChannelLogger(appLogger),
		),
		Auth:     auth.NewRedirector(issuer, cfg.Auth),
		Checkout: checkout.NewClient(sf.APIBaseURL, sf.InventoryTimeout, *token),
		Logger:   appLogger,
	})
	defer session.Close()

	select {
	case <-session.Loaded():
	case <-ctx.Done():
		return
	}

	for _, id := range splitSeats(*seatList) {
		outcome, err := session.Toggle(id)
		if err != nil {
			log.Fatalf("Failed to toggle %s: %v", id, err)
		}
		fmt.Printf("%-8s %s\n", id, outcome)
	}

	select {
	case <-time.After(*settle):
	case <-ctx.Done():
		return
	}
	view := session.View()
	printView(view)
	for _, n := range view.Notices {
		session.Dismiss(n.ID)
	}

	if !*buy {
		return
	}
	result, err := session.HandOff(ctx)
	if err != nil {
		log.Fatalf("Checkout hand-off failed: %v", err)
	}
	if result.Redirect != nil {
		fmt.Printf("🔐 Log in to continue: %s\n", result.Redirect.URL)
		return
	}
	fmt.Printf("✅ Handed off to checkout: %s\n", result.HandOffID)
}

// eventShapes fetches the event's seat map so demo inventory mirrors the real sector layout
func eventShapes(ctx context.Context, sf config.StorefrontConfig, eventID, token string) (inventory.ShapeResolver, error) {
	event, err := events.NewClient(sf.APIBaseURL, sf.InventoryTimeout, token).GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return inventory.LayoutShapes{
		Config:   event.SeatMapConfig,
		Fallback: inventory.StaticShapes{Rows: sf.DemoRows, SeatsPerRow: sf.DemoSeatsPerRow, Price: sf.DemoPrice},
	}, nil
}

func splitSeats(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func printView(v selection.View) {
	fmt.Printf("\n📍 %s / %s  mode=%s channel=%s\n", v.EventID, v.SectorID, v.Mode, v.Channel)
	for _, n := range v.Notices {
		fmt.Printf("   ⚠️  %s\n", n.Message)
	}

	out, err := json.MarshalIndent(struct {
		Selected any     `json:"selected"`
		Total    float64 `json:"total"`
	}{v.Selected, v.Total}, "", "  ")
	if err != nil {
		log.Printf("Failed to encode selection: %v", err)
		return
	}
	fmt.Println(string(out))
}
