// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/services"
)

// maxBodyBytes caps request bodies. Batches from the dashboard stay well below it.
const maxBodyBytes = 1 << 20

// Ledger is the set of ledger operations the API serves.
type Ledger interface {
	Ping(ctx context.Context) error
	FetchExpensesForDate(ctx context.Context, d core.Date) ([]core.Expense, error)
	FetchMonthlyExpenses(ctx context.Context, year int, category string) ([]core.MonthTotal, error)
	InsertExpense(ctx context.Context, e core.Expense) error
	DeleteExpensesForDate(ctx context.Context, d core.Date) (int64, error)
	FetchCategoryBreakdown(ctx context.Context, start, end core.Date) (core.CategoryBreakdown, error)
	FetchExpensesForCategoryDate(ctx context.Context, category string, d core.Date) ([]core.Expense, error)
	FetchExpensesForNote(ctx context.Context, term string, year int, months []int) ([]core.Expense, error)
	FetchExpensesByCategoryAndPeriod(ctx context.Context, category, period string) ([]core.Expense, error)
}

// BatchApplier reconciles a batch of edits against the ledger.
type BatchApplier interface {
	Apply(ctx context.Context, batch core.Batch) (services.ReconcileResult, error)
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	Logger         *log.Logger
}

type Server struct {
	http.Server
	ledger  Ledger
	batches BatchApplier
	logger  *log.Logger
}

func NewServer(opts Options, ledger Ledger, batches BatchApplier) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		ledger:  ledger,
		batches: batches,
		logger:  logger.WithComponent(log.ComponentHTTP),
	}
	s.Addr = opts.Addr
	s.Handler = s.routes(opts.AllowedOrigins)
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16
	return s
}

func (s *Server) routes(origins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(log.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(DefaultHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/expenses", func(r chi.Router) {
		r.Post("/addorupdate", s.handleAddExpenses)
		// misspelled path older clients still post to
		r.Post("/addorudpate", s.handleAddExpenses)
		r.Post("/note", s.handleExpensesByNote)
		r.Post("/category/date", s.handleExpensesByCategoryDate)
		r.Post("/category/period", s.handleExpensesByCategoryPeriod)
		r.Post("/update", s.handleUpdate)
		r.Get("/{date}", s.handleExpensesForDate)
		r.Delete("/{date}", s.handleDeleteExpensesForDate)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Post("/expenses/monthly", s.handleMonthlyExpenses)
		r.Post("/getexpensesbydaterange", s.handleCategoryBreakdown)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}
