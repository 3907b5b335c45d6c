package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milbrook/claims-cli/internal/ingest"
	"github.com/milbrook/claims-cli/internal/model"
	"github.com/milbrook/claims-cli/internal/normalize"
	"github.com/milbrook/claims-cli/internal/rules"
	"github.com/milbrook/claims-cli/internal/store"
	"github.com/milbrook/claims-cli/internal/waterfall"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for claim evaluation and portfolio assessment",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		api := &apiServer{store: st}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      api.router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	store store.Store
}

func (s *apiServer) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/waterfall", s.handleWaterfall)
		r.Post("/portfolio", s.handlePortfolio)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvaluate normalizes one raw claim record and runs the rule engine.
func (s *apiServer) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var raw map[string]string
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, warnings, err := normalize.Record(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	rcfg, err := loadRules()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := rules.Evaluate(*rec, rcfg)
	result.Warnings = append(result.Warnings, warnings...)

	writeJSON(w, http.StatusOK, map[string]any{
		"record":      rec,
		"eligibility": result,
	})
}

type waterfallRequest struct {
	GrossProceeds           string `json:"gross_proceeds"`
	OutstandingCosts        string `json:"outstanding_costs"`
	FirstTierReturn         string `json:"first_tier_return"`
	DistributionCostOverrun string `json:"distribution_cost_overrun"`
}

func (s *apiServer) handleWaterfall(w http.ResponseWriter, r *http.Request) {
	var req waterfallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gross, err := parseAmount(req.GrossProceeds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gross_proceeds")
		return
	}
	costs, err := parseAmount(req.OutstandingCosts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outstanding_costs")
		return
	}
	firstTier, err := parseAmount(req.FirstTierReturn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid first_tier_return")
		return
	}
	overrun, err := parseAmount(req.DistributionCostOverrun)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid distribution_cost_overrun")
		return
	}

	result, err := waterfall.Compute(gross, waterfall.Deductions{
		OutstandingCosts:        costs,
		FirstTierReturn:         firstTier,
		DistributionCostOverrun: overrun,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result.Rounded())
}

type portfolioRequest struct {
	Source     string              `json:"source"`
	Records    []map[string]string `json:"records"`
	Deductions waterfallRequest    `json:"deductions"`
}

// handlePortfolio runs the full assessment pipeline over raw records and
// persists the resulting run.
func (s *apiServer) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "records are required")
		return
	}

	costs, err := parseAmount(req.Deductions.OutstandingCosts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid outstanding_costs")
		return
	}
	firstTier, err := parseAmount(req.Deductions.FirstTierReturn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid first_tier_return")
		return
	}
	overrun, err := parseAmount(req.Deductions.DistributionCostOverrun)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid distribution_cost_overrun")
		return
	}
	ded := waterfall.Deductions{
		OutstandingCosts:        costs,
		FirstTierReturn:         firstTier,
		DistributionCostOverrun: overrun,
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	ctx := r.Context()
	run, err := s.store.CreateRun(ctx, source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res := ingest.Normalize(req.Records)
	assessment, err := buildAssessment(ctx, run.ID, res, ded)
	if err != nil {
		if uerr := s.store.UpdateRunResult(ctx, run.ID, &model.RunResult{Error: err.Error()}); uerr != nil {
			zap.L().Error("record run failure", zap.Error(uerr))
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	persistAssessment(ctx, s.store, assessment)
	writeJSON(w, http.StatusOK, assessment)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
		Source: r.URL.Query().Get("source"),
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
