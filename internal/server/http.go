package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-kit/kit/log/level"
	"github.com/rs/cors"

	"DeltaV/internal/rocket"
)

//go:generate go run ./cmd/webbuild

/* ------------------------------ Embeds ------------------------------ */

//go:embed web/index.html
var htmlIndex []byte

//go:embed web/client.js
var jsClient []byte

/* ------------------------------- HTTP ------------------------------- */

const maxBodyBytes = 1 << 20

// Handler returns the full HTTP surface: API routes, the websocket endpoint
// and the embedded UI, wrapped in CORS and request logging.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(htmlIndex)
	})
	mux.HandleFunc("GET /client.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(jsClient)
	})
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messageDTO{Message: "pong"})
	})
	mux.HandleFunc("GET /materials", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.calc.Catalog().MaterialNames())
	})
	mux.HandleFunc("GET /fuels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.calc.Catalog().FuelNames())
	})
	mux.HandleFunc("POST /calculate", a.handleCalculate)
	mux.HandleFunc("POST /sweep", a.handleSweep)
	mux.HandleFunc("GET /ws", a.serveWS)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return requestLogger(a.logger, c.Handler(mux))
}

func (a *App) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body calculateRequestDTO
	if err := decodeBody(w, r, &body); err != nil {
		a.writeError(w, err)
		return
	}
	res, err := a.calc.Compute(body.toRequest())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToDTO(res))
}

func (a *App) handleSweep(w http.ResponseWriter, r *http.Request) {
	var body sweepRequestDTO
	if err := decodeBody(w, r, &body); err != nil {
		a.writeError(w, err)
		return
	}
	steps, err := body.steps()
	if err != nil {
		a.writeError(w, err)
		return
	}
	req := body.toRequest()
	points, err := a.calc.Sweep(req, steps)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		var buf bytes.Buffer
		if err := sweepWorkbook(&buf, req, a.calc.Policy(), points); err != nil {
			a.writeError(w, fmt.Errorf("build sweep workbook: %w", err))
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="delta-v-sweep.xlsx"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			level.Warn(a.logger).Log("msg", "send sweep workbook", "err", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, sweepToDTO(points))
}

// decodeBody reads a single JSON object. Malformed bodies and non-numeric
// fields are reported as invalid input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, errNonNumeric) {
			return fmt.Errorf("height, diameter and fuel fill percentage must be numbers: %w", rocket.ErrInvalidInput)
		}
		return fmt.Errorf("malformed request body: %v: %w", err, rocket.ErrInvalidInput)
	}
	return nil
}

// writeError maps calculator errors to 400 and anything else to 500.
func (a *App) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, rocket.ErrInvalidInput) || errors.Is(err, rocket.ErrDomain) {
		level.Debug(a.logger).Log("msg", "rejected request", "err", err)
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
		return
	}
	level.Error(a.logger).Log("msg", "request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, errorDTO{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
