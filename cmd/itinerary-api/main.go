// README: Entry point; loads config, wires services, starts HTTP server and the session sweeper.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"myitinerary/internal/ai"
	"myitinerary/internal/config"
	httptransport "myitinerary/internal/http"
	"myitinerary/internal/http/handlers"
	"myitinerary/internal/infra"
	"myitinerary/internal/maps"
	"myitinerary/internal/modules/accommodation"
	"myitinerary/internal/modules/aiusage"
	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/modules/session"
	"myitinerary/internal/service"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, closeProvider, err := newCompleter(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("ai provider init: %v", err)
	}
	defer closeProvider()

	mode := itinerary.ValidationLenient
	if cfg.Itinerary.StrictValidation {
		mode = itinerary.ValidationStrict
	}
	itinerarySvc := itinerary.NewService(completer, itinerary.Options{Model: cfg.AI.ActiveModel(), Mode: mode})

	var (
		quota service.Quota
		usage handlers.UsageReader
	)
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		usageSvc := aiusage.NewService(aiusage.NewStore(dbPool), cfg.Itinerary.MonthlyQuota)
		quota, usage = usageSvc, usageSvc
	} else {
		log.Printf("[PLANNER] ITINERARY_DB_DSN not set; quota and call log disabled")
	}

	var gate session.Gate
	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal(err)
		}
		defer redisClient.Close()
		gate = session.NewRedisGate(redisClient, session.GateTTL(cfg.AI.Timeout))
	}

	var (
		places accommodation.LodgingSearcher
		routes accommodation.RouteEstimator
	)
	if cfg.Maps.APIKey != "" {
		placesSvc, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("places init: %v", err)
		}
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("routes init: %v", err)
		}
		places, routes = placesSvc, routeSvc
	}

	sessions := session.NewRegistry()
	planner := service.NewTripPlanner(sessions, itinerarySvc, gate, quota, service.PlannerOptions{
		Provider: cfg.AI.Provider,
		Model:    cfg.AI.ActiveModel(),
	})

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Planner:       planner,
		Accommodation: accommodation.NewService(places, routes),
		CORSOrigins:   cfg.CORS.Origins,
		Usage:         usage,
		CallTimeout:   cfg.AI.Timeout,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go runSweeper(ctx, sessions, cfg.Itinerary.SessionIdle)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[HTTP] shutdown: %v", err)
		}
	}()

	log.Printf("[HTTP] listening on %s provider=%s model=%s", cfg.HTTP.Addr, cfg.AI.Provider, cfg.AI.ActiveModel())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// newCompleter builds the configured provider. The returned func releases it.
func newCompleter(ctx context.Context, cfg config.AIConfig) (ai.ChatCompleter, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		p, err := ai.NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	default:
		if cfg.OpenAIKey == "" {
			log.Printf("[AI] OPENAI_SECRET not set; completion calls will fail with an auth error")
		}
		client := ai.NewOpenAIClient(ai.OpenAIOptions{
			APIKey:   cfg.OpenAIKey,
			Endpoint: cfg.OpenAIEndpoint,
			Model:    cfg.Model,
			Timeout:  cfg.Timeout,
		})
		return client, func() {}, nil
	}
}

func runSweeper(ctx context.Context, sessions *session.Registry, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep(maxIdle)
		}
	}
}
