package api

import (
	"net/http"
	"time"

	"stockfolio/src/api/handlers"
	"stockfolio/src/config"
	"stockfolio/src/database"
	"stockfolio/src/repositories"
	"stockfolio/src/services"
	"stockfolio/src/utils"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	holdingRepository := repositories.NewHoldingRepository(db)
	transactionRepository := repositories.NewTransactionRepository(db)
	wishlistRepository := repositories.NewWishlistRepository(db)
	archiveRepository := repositories.NewDeletedHoldingRepository(db)

	ledgerService := services.NewLedgerService(db, holdingRepository, transactionRepository, wishlistRepository, archiveRepository)
	wishlistService := services.NewWishlistService(holdingRepository, wishlistRepository)

	logger := utils.NewLogger(cfg.Service.LogLevel)

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handlers.NewHandler(logger, ledgerService, wishlistService),
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/holdings", func(r chi.Router) {
		r.Get("/", s.Handler.GetHoldings)
		r.Post("/", s.Handler.AddHolding)
		r.Get("/deleted", s.Handler.GetDeletedHoldings)
		r.Post("/{id}/sell", s.Handler.SellHolding)
		r.Delete("/{id}", s.Handler.DeleteHolding)
	})

	s.Router.Get("/api/transactions", s.Handler.GetTransactions)

	s.Router.Route("/api/wishlist", func(r chi.Router) {
		r.Get("/", s.Handler.GetWishlist)
		r.Post("/", s.Handler.AddToWishlist)
		r.Delete("/{id}", s.Handler.RemoveFromWishlist)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
