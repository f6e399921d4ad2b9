package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/service/ledgerService"
)

type Ledger interface {
	ListPurchases(ctx context.Context) ([]model.PurchaseLot, error)
	PreviewPurchase(ctx context.Context, in ledgerService.PurchaseInput) (ledgerService.PurchasePreview, error)
	CreatePurchase(ctx context.Context, in ledgerService.PurchaseInput) (model.PurchaseLot, error)
	DeletePurchase(ctx context.Context, lotID string) error
	ListSales(ctx context.Context) ([]model.SaleRecord, error)
	PreviewSale(ctx context.Context, in ledgerService.SaleInput) (ledgerService.SalePreview, error)
	CreateSale(ctx context.Context, in ledgerService.SaleInput) (model.SaleRecord, error)
	UpdateSale(ctx context.Context, saleID string, in ledgerService.SaleInput) (model.SaleRecord, error)
	DeleteSale(ctx context.Context, saleID string) error
	AvailableLots(ctx context.Context) ([]model.LotAvailability, error)
	PortfolioSummary(ctx context.Context) (model.PortfolioSummary, error)
	RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	GetFeeSettings(ctx context.Context) (model.FeeSettings, error)
	SaveFeeSettings(ctx context.Context, fs model.FeeSettings) error
	ExportReport(ctx context.Context) ([]byte, string, error)
	UploadReport(ctx context.Context) (string, error)
}

type Market interface {
	ProxySpotPrices(ctx context.Context) ([]byte, error)
	ProxyProducts(ctx context.Context) ([]byte, error)
	GetProducts(ctx context.Context) (model.ProductCatalog, error)
	RefreshProducts(ctx context.Context) (model.ProductCatalog, error)
}

type Server struct {
	ledger Ledger
	market Market
	server *http.Server
}

func New(cfg *config.Config, ledger Ledger, market Market) *Server {
	s := &Server{ledger: ledger, market: market}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      applyMiddleware(mux),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	slog.Info("starting HTTP server", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// market data
	mux.HandleFunc("GET /api/gold-price", s.handleGoldPrice)
	mux.HandleFunc("GET /api/pure-products", s.handlePureProducts)
	mux.HandleFunc("GET /api/products", s.handleProducts)
	mux.HandleFunc("POST /api/products/refresh", s.handleRefreshProducts)

	// ledger
	mux.HandleFunc("GET /api/purchases", s.handleListPurchases)
	mux.HandleFunc("POST /api/purchases", s.handleCreatePurchase)
	mux.HandleFunc("POST /api/purchases/preview", s.handlePreviewPurchase)
	mux.HandleFunc("DELETE /api/purchases/{id}", s.handleDeletePurchase)

	mux.HandleFunc("GET /api/sales", s.handleListSales)
	mux.HandleFunc("POST /api/sales", s.handleCreateSale)
	mux.HandleFunc("POST /api/sales/preview", s.handlePreviewSale)
	mux.HandleFunc("PUT /api/sales/{id}", s.handleUpdateSale)
	mux.HandleFunc("DELETE /api/sales/{id}", s.handleDeleteSale)

	mux.HandleFunc("GET /api/lots/available", s.handleAvailableLots)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/transactions/recent", s.handleRecentTransactions)

	mux.HandleFunc("GET /api/settings/fees", s.handleGetFeeSettings)
	mux.HandleFunc("PUT /api/settings/fees", s.handleSaveFeeSettings)

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("POST /api/report/upload", s.handleUploadReport)
}
