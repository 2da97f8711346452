// Package http exposes the service over a JSON API, including the report
// and export download endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dizimo/internal/auth"
	"dizimo/internal/services"
)

type Server struct {
	http.Server

	contributors  *services.ContributorService
	contributions *services.ContributionService
	reports       *services.ReportService

	defaultPageSize int

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, contributors *services.ContributorService, contributions *services.ContributionService, reports *services.ReportService, defaultPageSize int) *Server {
	mux := http.NewServeMux()
	rl := newRateLimiter()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           auth.Middleware(rl.middleware(mux)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		contributors:    contributors,
		contributions:   contributions,
		reports:         reports,
		defaultPageSize: defaultPageSize,
		rateLimiter:     rl,
	}

	mux.HandleFunc("GET /api/contributors", s.handleListContributors)
	mux.HandleFunc("POST /api/contributors", s.handleCreateContributor)
	mux.HandleFunc("GET /api/contributors/{id}", s.handleGetContributor)
	mux.HandleFunc("PATCH /api/contributors/{id}", s.handleUpdateContributor)
	mux.HandleFunc("DELETE /api/contributors/{id}", s.handleDeleteContributor)

	mux.HandleFunc("GET /api/contributions", s.handleListContributions)
	mux.HandleFunc("POST /api/contributions", s.handleCreateContribution)
	mux.HandleFunc("GET /api/contributions/{id}", s.handleGetContribution)
	mux.HandleFunc("PATCH /api/contributions/{id}", s.handleUpdateContribution)
	mux.HandleFunc("DELETE /api/contributions/{id}", s.handleDeleteContribution)

	mux.HandleFunc("GET /api/statistics", s.handleStatistics)

	mux.HandleFunc("GET /api/reports/contributions.pdf", s.handleContributionReport)
	mux.HandleFunc("GET /api/reports/contributors.pdf", s.handleContributorReport)
	mux.HandleFunc("GET /api/reports/consolidated.pdf", s.handleConsolidatedReport)
	mux.HandleFunc("GET /api/exports/contributions.csv", s.handleContributionsExport)
	mux.HandleFunc("GET /api/exports/contributors.csv", s.handleContributorsExport)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return s
}

// Shutdown stops the HTTP server and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
