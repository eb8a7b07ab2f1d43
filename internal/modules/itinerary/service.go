// README: Itinerary generation and adjustment over a chat completion provider.
package itinerary

import (
	"context"
	"errors"
	"log"
	"strings"

	"myitinerary/internal/ai"
)

// rawLogLimit bounds how much of an unparseable reply goes to the log.
const rawLogLimit = 500

type Options struct {
	// Model overrides the provider's default model when set.
	Model string
	Mode  ValidationMode
}

type Service struct {
	completer ai.ChatCompleter
	model     string
	mode      ValidationMode
}

func NewService(completer ai.ChatCompleter, opts Options) *Service {
	return &Service{completer: completer, model: opts.Model, mode: opts.Mode}
}

// Mode reports the structural validation mode in use.
func (s *Service) Mode() ValidationMode {
	return s.mode
}

type GenerateResult struct {
	Itinerary *Itinerary
	// Summary echoes the originating request.
	Summary Summary
	Drift   []DriftIssue
	Raw     string
}

type AdjustResult struct {
	Itinerary *Itinerary
	Drift     []DriftIssue
	Raw       string
}

// Generate validates req, asks the model for a complete itinerary and extracts it.
// Errors keep their kind: *ValidationError, *ai.TransportError, *ExtractionError or *SchemaDriftError.
func (s *Service) Generate(ctx context.Context, req TripRequest) (*GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	days := req.DayCount()

	raw, err := s.complete(ctx, GenerationMessages(req))
	if err != nil {
		log.Printf("[AI] generate destination=%q days=%d failed: %v", req.Destination, days, err)
		return nil, err
	}

	it, err := Extract(raw)
	if err != nil {
		log.Printf("[AI] generate: %v raw=%q", err, clip(raw))
		return nil, err
	}
	drift := Inspect(it, days)
	if err := s.mode.check(drift); err != nil {
		return nil, err
	}
	if len(drift) > 0 {
		log.Printf("[AI] generate destination=%q: %d drift issues", req.Destination, len(drift))
	}
	return &GenerateResult{
		Itinerary: it,
		Summary:   req.Summary(),
		Drift:     drift,
		Raw:       raw,
	}, nil
}

// Adjust asks the model to rewrite current according to instruction. current is never
// modified; on success the result is a new itinerary meant to replace it wholesale.
func (s *Service) Adjust(ctx context.Context, current *Itinerary, instruction string) (*AdjustResult, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, &ValidationError{Field: "instruction", Message: MsgAdjustmentRequired}
	}
	if current == nil {
		return nil, &ValidationError{Field: "itinerary", Message: MsgNoItinerary}
	}

	msgs, err := AdjustmentMessages(current, instruction)
	if err != nil {
		return nil, err
	}
	raw, err := s.complete(ctx, msgs)
	if err != nil {
		log.Printf("[AI] adjust destination=%q failed: %v", current.Destination, err)
		return nil, err
	}

	it, err := Extract(raw)
	if err != nil {
		log.Printf("[AI] adjust: %v raw=%q", err, clip(raw))
		return nil, err
	}
	drift := Inspect(it, expectedDays(it, current))
	if err := s.mode.check(drift); err != nil {
		return nil, err
	}
	return &AdjustResult{Itinerary: it, Drift: drift, Raw: raw}, nil
}

func (s *Service) complete(ctx context.Context, msgs []ai.Message) (string, error) {
	raw, err := s.completer.CompleteChat(ctx, s.model, msgs)
	if err == nil {
		return raw, nil
	}
	var te *ai.TransportError
	if !errors.As(err, &te) {
		err = &ai.TransportError{Provider: "completion", Err: err}
	}
	return "", err
}

// expectedDays prefers the adjusted itinerary's own date range, since an adjustment
// may legitimately change the trip length.
func expectedDays(adjusted, current *Itinerary) int {
	start, err1 := ParseDisplayDate(adjusted.StartDate)
	end, err2 := ParseDisplayDate(adjusted.EndDate)
	if err1 == nil && err2 == nil && !end.Before(start) {
		return daysInclusive(start, end)
	}
	return len(current.Days)
}

func clip(s string) string {
	if len(s) <= rawLogLimit {
		return s
	}
	return s[:rawLogLimit] + "..."
}
