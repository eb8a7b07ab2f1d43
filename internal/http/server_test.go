// README: End-to-end route tests with a stubbed completion provider.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"myitinerary/internal/ai"
	"myitinerary/internal/modules/aiusage"
	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/modules/session"
	"myitinerary/internal/service"
)

const goaReply = "```json\n" +
	`{"destination":"Goa","startDate":"01/06/2024","endDate":"03/06/2024","days":[` +
	`{"day":1,"date":"01/06/2024","activities":[{"time":"Morning","title":"Baga Beach","description":"Swim","estimatedCost":"₹500"}],"meals":[{"type":"Dinner"}]},` +
	`{"day":2,"date":"02/06/2024","activities":[]},` +
	`{"day":3,"date":"03/06/2024","activities":[]}],"summary":{},"expectedBudget":{"flights":12000}}` +
	"\n```"

// stubCompleter returns queued replies and errors in order.
type stubCompleter struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
}

func (s *stubCompleter) CompleteChat(_ context.Context, _ string, _ []ai.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	var reply string
	var err error
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return reply, err
}

func buildTestServer(c ai.ChatCompleter) http.Handler {
	return buildTestServerWithUsage(c, nil)
}

func buildTestServerWithUsage(c ai.ChatCompleter, usage *stubUsage) http.Handler {
	gin.SetMode(gin.TestMode)
	planner := service.NewTripPlanner(
		session.NewRegistry(),
		itinerary.NewService(c, itinerary.Options{}),
		nil, nil,
		service.PlannerOptions{Provider: "stub", Model: "stub"},
	)
	deps := ServerDeps{Planner: planner}
	if usage != nil {
		deps.Usage = usage
	}
	return NewServer(deps).Routes()
}

type stubUsage struct {
	uids []string
}

func (u *stubUsage) Allowance() int { return 100 }

func (u *stubUsage) Remaining(_ context.Context, uid string) (int, error) {
	u.uids = append(u.uids, uid)
	return 42, nil
}

func (u *stubUsage) RecentCalls(_ context.Context, uid string, _ int) ([]aiusage.Call, error) {
	return []aiusage.Call{{UID: uid, Operation: aiusage.OperationGenerate, Outcome: "ok", Latency: 1500 * time.Millisecond}}, nil
}

func doRequest(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	w := doRequest(h, http.MethodPost, "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		SessionID string       `json:"session_id"`
		User      session.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User != session.DefaultUser() {
		t.Fatalf("expected placeholder user, got %+v", resp.User)
	}
	return resp.SessionID
}

func goaForm() map[string]any {
	return map[string]any{
		"travelers":     2,
		"budget":        "40000-80000",
		"start_date":    "2024-06-01",
		"end_date":      "2024-06-03",
		"destination":   "Goa",
		"travel_type":   "leisure",
		"flight_option": "withFlight",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	w := doRequest(buildTestServer(&stubCompleter{}), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", w.Code, w.Body.String())
	}
}

func TestGenerateAndFetchItinerary(t *testing.T) {
	h := buildTestServer(&stubCompleter{replies: []string{goaReply}})
	id := createSession(t, h)

	w := doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary", goaForm())
	if w.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Itinerary itinerary.Itinerary    `json:"itinerary"`
		Summary   itinerary.Summary      `json:"summary"`
		Drift     []itinerary.DriftIssue `json:"drift"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Itinerary.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(resp.Itinerary.Days))
	}
	if resp.Summary.Budget != "₹40000-80000" || resp.Summary.FlightPreference != itinerary.FlightsIncluded {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
	if resp.Drift == nil {
		t.Error("drift should be an empty list, not null")
	}

	w = doRequest(h, http.MethodGet, "/api/sessions/"+id+"/itinerary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get itinerary: expected 200, got %d", w.Code)
	}

	w = doRequest(h, http.MethodGet, "/api/sessions/"+id+"/itinerary.pdf", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf: unexpected %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatal("pdf body is not a PDF")
	}

	if w := doRequest(h, http.MethodDelete, "/api/sessions/"+id+"/itinerary", nil); w.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", w.Code)
	}
	if w := doRequest(h, http.MethodGet, "/api/sessions/"+id+"/itinerary", nil); w.Code != http.StatusNotFound {
		t.Fatalf("itinerary after reset: expected 404, got %d", w.Code)
	}
}

func TestGenerateValidation(t *testing.T) {
	stub := &stubCompleter{replies: []string{goaReply}}
	h := buildTestServer(stub)
	id := createSession(t, h)

	tests := []struct {
		name    string
		mutate  func(f map[string]any)
		message string
	}{
		{"missing destination", func(f map[string]any) { delete(f, "destination") }, "All fields are required to proceed."},
		{"missing flight option", func(f map[string]any) { delete(f, "flight_option") }, "All fields are required to proceed."},
		{"end before start", func(f map[string]any) { f["end_date"] = "2024-05-30" }, "End date cannot be earlier than start date."},
		{"empty custom budget", func(f map[string]any) { f["budget"] = "custom"; f["custom_budget"] = "abc" }, "All fields are required to proceed."},
		{"zero custom budget", func(f map[string]any) { f["budget"] = "custom"; f["custom_budget"] = "0" }, "Please enter a valid budget amount."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := goaForm()
			tt.mutate(form)
			w := doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary", form)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := decodeError(t, w)["error"]; got != tt.message {
				t.Fatalf("error = %q, want %q", got, tt.message)
			}
		})
	}
	if stub.calls != 0 {
		t.Fatal("validation failures must not reach the provider")
	}
}

func TestGenerateProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		stub    *stubCompleter
		status  int
		message string
	}{
		{"transport", &stubCompleter{errs: []error{&ai.TransportError{Provider: "openai", StatusCode: 401, Err: errors.New("bad key")}}}, http.StatusBadGateway, "Failed to generate itinerary. Please try again."},
		{"extraction", &stubCompleter{replies: []string{"I cannot help with that."}}, http.StatusBadGateway, "Unable to process the generated itinerary. Please try again."},
		{"drift", &stubCompleter{replies: []string{`{"days":{"day":1}}`}}, http.StatusUnprocessableEntity, "Unable to process the generated itinerary. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := buildTestServer(tt.stub)
			id := createSession(t, h)
			w := doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary", goaForm())
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, w.Code, w.Body.String())
			}
			if got := decodeError(t, w)["error"]; got != tt.message {
				t.Fatalf("error = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestAdjustFlow(t *testing.T) {
	stub := &stubCompleter{
		replies: []string{goaReply, ""},
		errs:    []error{nil, &ai.TransportError{Provider: "openai", Err: errors.New("timeout")}},
	}
	h := buildTestServer(stub)
	id := createSession(t, h)

	w := doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary/adjust", map[string]string{"instruction": "more beaches"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("adjust before generate: expected 400, got %d", w.Code)
	}

	if w := doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary", goaForm()); w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary/adjust", map[string]string{"instruction": "   "})
	if w.Code != http.StatusBadRequest || decodeError(t, w)["error"] != "Please provide adjustment details" {
		t.Fatalf("empty instruction: unexpected %d %s", w.Code, w.Body.String())
	}

	w = doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary/adjust", map[string]string{"instruction": "more beaches"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("adjust transport failure: expected 502, got %d", w.Code)
	}
	if got := decodeError(t, w)["error"]; got != "Failed to adjust itinerary. Please check your internet connection and try again." {
		t.Fatalf("unexpected message %q", got)
	}

	// The generated itinerary is still served.
	w = doRequest(h, http.MethodGet, "/api/sessions/"+id+"/itinerary", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Baga Beach") {
		t.Fatalf("itinerary lost after failed adjust: %d %s", w.Code, w.Body.String())
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := buildTestServer(&stubCompleter{})
	id := createSession(t, h)

	if w := doRequest(h, http.MethodGet, "/api/sessions/"+id, nil); w.Code != http.StatusOK {
		t.Fatalf("get session: %d", w.Code)
	}
	if w := doRequest(h, http.MethodGet, "/api/sessions/"+id+"/itinerary", nil); w.Code != http.StatusNotFound {
		t.Fatalf("itinerary before generate: expected 404, got %d", w.Code)
	}
	if w := doRequest(h, http.MethodDelete, "/api/sessions/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := doRequest(h, http.MethodGet, "/api/sessions/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
	if w := doRequest(h, http.MethodGet, "/api/sessions/not-an-id!", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: expected 400, got %d", w.Code)
	}
}

func TestStaticEndpoints(t *testing.T) {
	h := buildTestServer(&stubCompleter{})

	w := doRequest(h, http.MethodGet, "/api/accommodations?destination=Goa", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Hotel A") {
		t.Fatalf("accommodations: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(h, http.MethodGet, "/api/links", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "getyourguide") {
		t.Fatalf("links: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(h, http.MethodGet, "/api/options", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "640000+") || !strings.Contains(w.Body.String(), "withoutFlight") {
		t.Fatalf("options: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(h, http.MethodGet, "/api/travel-estimate?origin=Mumbai&destination=Goa", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("travel estimate without maps: expected 503, got %d", w.Code)
	}
}

func TestUsage(t *testing.T) {
	h := buildTestServer(&stubCompleter{})
	id := createSession(t, h)
	if w := doRequest(h, http.MethodGet, "/api/sessions/"+id+"/usage", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("usage without store: expected 503, got %d", w.Code)
	}

	usage := &stubUsage{}
	h = buildTestServerWithUsage(&stubCompleter{}, usage)
	id = createSession(t, h)
	w := doRequest(h, http.MethodGet, "/api/sessions/"+id+"/usage", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("usage: expected 200, got %d", w.Code)
	}
	var resp struct {
		Allowance int `json:"allowance"`
		Remaining int `json:"remaining"`
		Calls     []struct {
			Outcome   string `json:"outcome"`
			LatencyMS int64  `json:"latency_ms"`
		} `json:"calls"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Allowance != 100 || resp.Remaining != 42 || len(resp.Calls) != 1 || resp.Calls[0].LatencyMS != 1500 {
		t.Fatalf("unexpected usage %+v", resp)
	}
	if len(usage.uids) != 1 || usage.uids[0] != "session:"+id {
		t.Fatalf("usage looked up for %v, want the session key", usage.uids)
	}
}

func TestPDFContentDisposition(t *testing.T) {
	reply := strings.Replace(goaReply, `"destination":"Goa"`, `"destination":"Goa, India; Zürich"`, 1)
	h := buildTestServer(&stubCompleter{replies: []string{reply}})
	id := createSession(t, h)
	if w := doRequest(h, http.MethodPost, "/api/sessions/"+id+"/itinerary", goaForm()); w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}

	w := doRequest(h, http.MethodGet, "/api/sessions/"+id+"/itinerary.pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pdf: %d", w.Code)
	}
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("Content-Disposition %q does not parse: %v", w.Header().Get("Content-Disposition"), err)
	}
	if disposition != "attachment" || params["filename"] != "ITINERARY_Goa_India_Z_rich_01-06-2024.pdf" {
		t.Fatalf("unexpected disposition %q %v", disposition, params)
	}
}
