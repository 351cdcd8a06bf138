package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"DeltaV/internal/rocket"
)

func newTestApp() *App {
	return NewApp(rocket.NewCalculator(nil), kitlog.NewNopLogger())
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := doRequest(t, newTestApp().Handler(), http.MethodGet, "/ping", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got messageDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Message != "pong" {
		t.Errorf("message = %q, want pong", got.Message)
	}
}

func TestListings(t *testing.T) {
	h := newTestApp().Handler()
	for path, want := range map[string][]string{
		"/materials": rocket.DefaultCatalog().MaterialNames(),
		"/fuels":     rocket.DefaultCatalog().FuelNames(),
	} {
		rec := doRequest(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		var got []string
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("%s = %v, want %v", path, got, want)
		}
	}
}

func TestCalculateReference(t *testing.T) {
	body := `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Liquid Hydrogen","fuel_fill_percentage":1}`
	rec := doRequest(t, newTestApp().Handler(), http.MethodPost, "/calculate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got calculateResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DeltaV != 152.31218708097944 {
		t.Errorf("delta_v = %.17g, want 152.31218708097944", got.DeltaV)
	}
	if got.EscapesEarth {
		t.Errorf("reference rocket should not escape Earth")
	}
	if got.EscapeVelocity != rocket.EarthEscapeVelocity {
		t.Errorf("escape_velocity = %v", got.EscapeVelocity)
	}
}

// TestCalculateNumericStrings mirrors form posts that send numbers as text.
func TestCalculateNumericStrings(t *testing.T) {
	body := `{"material":"Steel","height":"10","diameter":" 2 ","fuel_type":"Liquid Hydrogen","fuel_fill_percentage":"1.0"}`
	rec := doRequest(t, newTestApp().Handler(), http.MethodPost, "/calculate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got calculateResponseDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.DeltaV != 152.31218708097944 {
		t.Errorf("delta_v = %.17g, want 152.31218708097944", got.DeltaV)
	}
}

func TestCalculateEmptyTank(t *testing.T) {
	body := `{"material":"Gold","height":3,"diameter":1,"fuel_type":"Hydrazine"}`
	rec := doRequest(t, newTestApp().Handler(), http.MethodPost, "/calculate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got calculateResponseDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.DeltaV != 0 {
		t.Errorf("missing fill should mean empty tank, got delta_v %v", got.DeltaV)
	}
}

func TestCalculateRejectsBadInput(t *testing.T) {
	h := newTestApp().Handler()
	cases := map[string]string{
		"unknown material": `{"material":"Mithril","height":10,"diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"unknown fuel":     `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Moonshine","fuel_fill_percentage":1}`,
		"zero height":      `{"material":"Steel","height":0,"diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"missing height":   `{"material":"Steel","diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"zero diameter":    `{"material":"Steel","height":10,"diameter":0,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"fill percent":     `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":85}`,
		"negative fill":    `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":-0.5}`,
		"non-numeric":      `{"material":"Steel","height":"tall","diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"boolean":          `{"material":"Steel","height":10,"diameter":true,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"NaN string":       `{"material":"Steel","height":"NaN","diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`,
		"malformed":        `{"material":`,
		"empty body":       ` `,
	}
	for name, body := range cases {
		rec := doRequest(t, h, http.MethodPost, "/calculate", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
			continue
		}
		var got errorDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got.Error == "" {
			t.Errorf("%s: expected error body, got %q", name, rec.Body.String())
		}
	}
}

// TestCalculateDomainError drives a degenerate policy through the handler.
func TestCalculateDomainError(t *testing.T) {
	calc := rocket.NewCalculator(nil, rocket.WithPolicy(rocket.Policy{Name: rocket.PolicyCoaxial, VoidRatio: 1, Capacity: rocket.LinearCapacity}))
	h := NewApp(calc, nil).Handler()
	body := `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Hydrazine","fuel_fill_percentage":1}`
	rec := doRequest(t, h, http.MethodPost, "/calculate", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "degenerate") {
		t.Errorf("error body %q should mention the degenerate mass ratio", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := doRequest(t, newTestApp().Handler(), http.MethodGet, "/calculate", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /calculate: expected 405, got %d", rec.Code)
	}
}

func corsPreflight(t *testing.T, requestHeaders string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/calculate", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	if requestHeaders != "" {
		req.Header.Set("Access-Control-Request-Headers", requestHeaders)
	}
	rec := httptest.NewRecorder()
	newTestApp().Handler().ServeHTTP(rec, req)
	return rec
}

// TestCORSPreflight uses the lowercase header names browsers send.
func TestCORSPreflight(t *testing.T) {
	rec := corsPreflight(t, "content-type")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "content-type" {
		t.Errorf("Access-Control-Allow-Headers = %q, want content-type", got)
	}
	if rec.Code >= 300 {
		t.Errorf("preflight status %d", rec.Code)
	}
}

func TestCORSPreflightWithoutRequestHeaders(t *testing.T) {
	rec := corsPreflight(t, "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if rec.Code >= 300 {
		t.Errorf("preflight status %d", rec.Code)
	}
}

func TestCORSSimplePost(t *testing.T) {
	body := `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Liquid Hydrogen","fuel_fill_percentage":1}`
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body))
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	newTestApp().Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestSweepJSON(t *testing.T) {
	body := `{"material":"Steel","height":10,"diameter":2,"fuel_type":"Liquid Hydrogen","steps":5}`
	rec := doRequest(t, newTestApp().Handler(), http.MethodPost, "/sweep", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got sweepResponseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(got.Points))
	}
	if got.Points[0].DeltaV != 0 || got.Points[4].DeltaV != 152.31218708097944 {
		t.Errorf("unexpected sweep endpoints: %+v ... %+v", got.Points[0], got.Points[4])
	}
	if got.Points[2].Fill != 0.5 {
		t.Errorf("midpoint fill = %v, want 0.5", got.Points[2].Fill)
	}
}

func TestSweepDefaultsAndLimits(t *testing.T) {
	h := newTestApp().Handler()
	rec := doRequest(t, h, http.MethodPost, "/sweep", `{"material":"Wood","height":5,"diameter":1,"fuel_type":"Hydrazine"}`)
	var got sweepResponseDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got.Points) != rocket.DefaultSweepSteps {
		t.Errorf("default sweep returned %d points, want %d", len(got.Points), rocket.DefaultSweepSteps)
	}

	for _, steps := range []string{"1", "1000", "2.5"} {
		rec := doRequest(t, h, http.MethodPost, "/sweep", `{"material":"Wood","height":5,"diameter":1,"fuel_type":"Hydrazine","steps":`+steps+`}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("steps %s: expected 400, got %d", steps, rec.Code)
		}
	}
}

func TestEmbeddedUI(t *testing.T) {
	h := newTestApp().Handler()
	rec := doRequest(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("Delta-V")) {
		t.Errorf("index: status %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/client.js", "")
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/javascript") {
		t.Errorf("client.js content type %q", rec.Header().Get("Content-Type"))
	}
	if rec := doRequest(t, h, http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: expected 404, got %d", rec.Code)
	}
}

// TestClientRendersErrorsAsText guards against server messages, which quote
// user-supplied names, being parsed as HTML by the UI.
func TestClientRendersErrorsAsText(t *testing.T) {
	if bytes.Contains(jsClient, []byte("innerHTML = `<p class=\"error\">")) {
		t.Errorf("client.js injects error messages through innerHTML")
	}
	if !bytes.Contains(jsClient, []byte("p.textContent = msg")) {
		t.Errorf("client.js does not render error messages with textContent")
	}
}
