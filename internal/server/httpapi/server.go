package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/grouptab/grouptab/internal/logging"
	"github.com/grouptab/grouptab/internal/server/auth"
	"github.com/grouptab/grouptab/internal/server/config"
	"github.com/grouptab/grouptab/internal/server/services"
)

// Server owns the HTTP listener and the handler wiring.
type Server struct {
	cfg    *config.Config
	logger logging.Logger
	issuer *auth.Issuer

	users    *services.UserService
	groups   *services.GroupService
	ledger   *services.LedgerService
	plans    *services.PlanService
	events   *services.EventService
	receipts *services.ReceiptService

	httpServer *http.Server
}

// Deps bundles everything the HTTP layer needs. Kept explicit so tests can
// assemble a Server around fakes.
type Deps struct {
	Config   *config.Config
	Logger   logging.Logger
	Issuer   *auth.Issuer
	Users    *services.UserService
	Groups   *services.GroupService
	Ledger   *services.LedgerService
	Plans    *services.PlanService
	Events   *services.EventService
	Receipts *services.ReceiptService
}

func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		logger:   d.Logger,
		issuer:   d.Issuer,
		users:    d.Users,
		groups:   d.Groups,
		ledger:   d.Ledger,
		plans:    d.Plans,
		events:   d.Events,
		receipts: d.Receipts,
	}
	s.httpServer = &http.Server{
		Addr:              d.Config.EndpointAddrHTTP,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Run() error {
	s.logger.Info(context.Background(), "http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
