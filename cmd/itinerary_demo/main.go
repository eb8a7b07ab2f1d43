// README: Command-line demo; generates one itinerary, optionally adjusts it and writes a PDF.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"myitinerary/internal/ai"
	"myitinerary/internal/config"
	"myitinerary/internal/modules/export"
	"myitinerary/internal/modules/itinerary"
)

func main() {
	var (
		destination = flag.String("destination", "Goa", "trip destination")
		start       = flag.String("start", time.Now().AddDate(0, 0, 30).Format("2006-01-02"), "start date (YYYY-MM-DD)")
		end         = flag.String("end", time.Now().AddDate(0, 0, 32).Format("2006-01-02"), "end date (YYYY-MM-DD)")
		travelers   = flag.Int("travelers", 2, "number of travelers")
		budget      = flag.String("budget", "40000-80000", "budget range or a custom amount")
		travelType  = flag.String("type", "leisure", "travel type")
		flights     = flag.Bool("flights", true, "include flights")
		origin      = flag.String("origin", "", "departure city for flights")
		adjust      = flag.String("adjust", "", "adjustment instruction applied after generation")
		pdfPath     = flag.String("pdf", "", "write the final itinerary as a PDF to this path")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	var completer ai.ChatCompleter
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		if cfg.AI.GeminiKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable not set")
		}
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to initialize AI provider: %v", err)
		}
		defer provider.Close()
		completer = provider
	default:
		if cfg.AI.OpenAIKey == "" {
			log.Fatal("OPENAI_SECRET environment variable not set")
		}
		completer = ai.NewOpenAIClient(ai.OpenAIOptions{
			APIKey:   cfg.AI.OpenAIKey,
			Endpoint: cfg.AI.OpenAIEndpoint,
			Model:    cfg.AI.Model,
			Timeout:  cfg.AI.Timeout,
		})
	}

	req, err := tripRequest(*destination, *start, *end, *travelers, *budget, *travelType, *flights, *origin)
	if err != nil {
		log.Fatal(err)
	}

	svc := itinerary.NewService(completer, itinerary.Options{Model: cfg.AI.ActiveModel()})
	fmt.Printf("Planning %d days in %s...\n", req.DayCount(), req.Destination)
	res, err := svc.Generate(ctx, req)
	if err != nil {
		log.Fatalf("generate (%s): %v", itinerary.KindOf(err), err)
	}
	it := res.Itinerary
	printDrift(res.Drift)

	if *adjust != "" {
		fmt.Printf("Adjusting: %s\n", *adjust)
		adj, err := svc.Adjust(ctx, it, *adjust)
		if err != nil {
			log.Printf("adjust (%s): %v; keeping the generated itinerary", itinerary.KindOf(err), err)
		} else {
			it = adj.Itinerary
			printDrift(adj.Drift)
		}
	}

	out, _ := json.MarshalIndent(struct {
		Summary   itinerary.Summary    `json:"summary"`
		Itinerary *itinerary.Itinerary `json:"itinerary"`
	}{res.Summary, it}, "", "  ")
	fmt.Println(string(out))

	if *pdfPath != "" {
		f, err := os.Create(*pdfPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := export.WritePDF(f, it, &res.Summary); err != nil {
			log.Fatalf("pdf: %v", err)
		}
		fmt.Printf("Wrote %s\n", *pdfPath)
	}
}

func tripRequest(destination, start, end string, travelers int, budget, travelType string, flights bool, origin string) (itinerary.TripRequest, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return itinerary.TripRequest{}, fmt.Errorf("start date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return itinerary.TripRequest{}, fmt.Errorf("end date: %w", err)
	}
	b, err := itinerary.PredefinedBudget(budget)
	if err != nil {
		if b, err = itinerary.ParseCustomBudget(budget); err != nil {
			return itinerary.TripRequest{}, err
		}
	}
	return itinerary.TripRequest{
		Travelers:      travelers,
		Budget:         b,
		StartDate:      startDate,
		EndDate:        endDate,
		Destination:    destination,
		TravelType:     itinerary.TravelType(travelType),
		IncludeFlights: flights,
		Origin:         origin,
	}, nil
}

func printDrift(issues []itinerary.DriftIssue) {
	for _, d := range issues {
		fmt.Printf("drift: %s: %s\n", d.Path, d.Problem)
	}
}
