package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"myitinerary/internal/modules/aiusage"
	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/modules/session"
	"myitinerary/internal/types"
)

// Quota is implemented by *aiusage.Service.
type Quota interface {
	UseToken(ctx context.Context, uid string) error
	RecordCall(ctx context.Context, c aiusage.Call)
}

// PlannerOptions names the provider and model recorded with each call.
type PlannerOptions struct {
	Provider string
	Model    string
}

// TripPlanner is the presentation boundary: it ties a client session to the itinerary
// service, holds the session's in-flight slot for the duration of a call and applies
// results only while the session is still open.
type TripPlanner struct {
	sessions    *session.Registry
	itineraries *itinerary.Service
	gate        session.Gate
	quota       Quota
	opts        PlannerOptions
}

// NewTripPlanner wires the planner. A nil gate uses a LocalGate; a nil quota disables
// quota checks and call logging.
func NewTripPlanner(sessions *session.Registry, itineraries *itinerary.Service, gate session.Gate, quota Quota, opts PlannerOptions) *TripPlanner {
	if gate == nil {
		gate = session.NewLocalGate()
	}
	return &TripPlanner{
		sessions:    sessions,
		itineraries: itineraries,
		gate:        gate,
		quota:       quota,
		opts:        opts,
	}
}

func (p *TripPlanner) Sessions() *session.Registry {
	return p.sessions
}

// Generate creates the session's first itinerary, or replaces the current one with a fresh plan.
func (p *TripPlanner) Generate(ctx context.Context, sessionID types.ID, req itinerary.TripRequest) (*itinerary.GenerateResult, error) {
	s, err := p.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res *itinerary.GenerateResult
	err = p.run(ctx, s, aiusage.OperationGenerate, func(cctx context.Context) (commit func(session.Ticket) error, err error) {
		res, err = p.itineraries.Generate(cctx, req)
		if err != nil {
			return nil, err
		}
		summary := res.Summary
		return func(t session.Ticket) error {
			return s.Commit(t, res.Itinerary, &summary, res.Drift)
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Adjust rewrites the session's itinerary. On any failure the current itinerary stays in place.
func (p *TripPlanner) Adjust(ctx context.Context, sessionID types.ID, instruction string) (*itinerary.AdjustResult, error) {
	s, err := p.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, &itinerary.ValidationError{Field: "instruction", Message: itinerary.MsgAdjustmentRequired}
	}
	if current, _ := s.Itinerary(); current == nil {
		return nil, &itinerary.ValidationError{Field: "itinerary", Message: itinerary.MsgNoItinerary}
	}

	var res *itinerary.AdjustResult
	err = p.run(ctx, s, aiusage.OperationAdjust, func(cctx context.Context) (func(session.Ticket) error, error) {
		// Read inside the in-flight slot so no other call can replace it meanwhile.
		current, _ := s.Itinerary()
		if current == nil {
			return nil, &itinerary.ValidationError{Field: "itinerary", Message: itinerary.MsgNoItinerary}
		}
		var err error
		res, err = p.itineraries.Adjust(cctx, current, instruction)
		if err != nil {
			return nil, err
		}
		return func(t session.Ticket) error {
			return s.Commit(t, res.Itinerary, nil, res.Drift)
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// StartOver drops the session's itinerary so the form can be filled again. A call
// still in flight is aborted and its result discarded.
func (p *TripPlanner) StartOver(sessionID types.ID) error {
	s, err := p.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	s.Reset()
	return nil
}

// Abandon closes the session. A call still in flight is aborted and its result discarded.
func (p *TripPlanner) Abandon(sessionID types.ID) error {
	return p.sessions.Close(sessionID)
}

// run holds the session and user slots around call, charges quota, logs the outcome
// and commits the result if the session is still current.
func (p *TripPlanner) run(ctx context.Context, s *session.Session, op string, call func(context.Context) (func(session.Ticket) error, error)) error {
	ticket, cctx, err := s.Begin(ctx, op)
	if err != nil {
		return err
	}
	defer s.Finish(ticket)

	uid := s.UsageKey()
	release, err := p.gate.Acquire(cctx, uid)
	if err != nil {
		return err
	}
	defer release()

	if p.quota != nil {
		if err := p.quota.UseToken(cctx, uid); err != nil {
			return err
		}
	}

	start := time.Now()
	commit, err := call(cctx)
	latency := time.Since(start)

	// The call context is only cancelled early when the session was closed or reset.
	aborted := err != nil && cctx.Err() != nil && ctx.Err() == nil
	p.record(ctx, uid, op, err, aborted, latency)

	if aborted {
		log.Printf("[PLANNER] session=%s op=%s aborted after %s", s.ID, op, latency)
		return session.ErrStale
	}
	if err != nil {
		return err
	}
	if err := commit(ticket); err != nil {
		log.Printf("[PLANNER] session=%s op=%s result discarded: %v", s.ID, op, err)
		return err
	}
	log.Printf("[PLANNER] session=%s op=%s ok latency_ms=%d", s.ID, op, latency.Milliseconds())
	return nil
}

func (p *TripPlanner) record(ctx context.Context, uid, op string, err error, aborted bool, latency time.Duration) {
	if p.quota == nil {
		return
	}
	outcome := "ok"
	switch {
	case aborted:
		outcome = "aborted"
	case err != nil:
		outcome = string(itinerary.KindOf(err))
	}
	p.quota.RecordCall(context.WithoutCancel(ctx), aiusage.Call{
		UID:       uid,
		Operation: op,
		Provider:  p.opts.Provider,
		Model:     p.opts.Model,
		Outcome:   outcome,
		Latency:   latency,
	})
}

// IsQuotaExceeded reports whether err means the user's monthly allowance is used up.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, aiusage.ErrInsufficientTokens)
}
