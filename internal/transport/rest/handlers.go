package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KotFed0t/gold_tracker/internal/converter/restConverter"
	"github.com/KotFed0t/gold_tracker/internal/converter/storeConverter"
	"github.com/KotFed0t/gold_tracker/internal/model/restModel"
	"github.com/KotFed0t/gold_tracker/internal/model/storeModel"
	"github.com/KotFed0t/gold_tracker/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGoldPrice(w http.ResponseWriter, r *http.Request) {
	body, err := s.market.ProxySpotPrices(r.Context())
	if err != nil {
		slog.Error("proxy gold price failed", slog.String("rqID", utils.GetRequestIDFromCtx(r.Context())), slog.String("err", err.Error()))
		JSONError(w, http.StatusInternalServerError, "Failed to fetch gold price", nil)
		return
	}
	rawJSON(w, body)
}

func (s *Server) handlePureProducts(w http.ResponseWriter, r *http.Request) {
	body, err := s.market.ProxyProducts(r.Context())
	if err != nil {
		slog.Error("proxy products failed", slog.String("rqID", utils.GetRequestIDFromCtx(r.Context())), slog.String("err", err.Error()))
		JSONError(w, http.StatusInternalServerError, "Failed to fetch products", nil)
		return
	}
	rawJSON(w, body)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.market.GetProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleProducts", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertProducts(catalog))
}

func (s *Server) handleRefreshProducts(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.market.RefreshProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleRefreshProducts", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertProducts(catalog))
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	lots, err := s.ledger.ListPurchases(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleListPurchases", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertPurchases(lots))
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req restModel.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := restConverter.ConvertPurchaseRequest(req)
	if err != nil {
		writeServiceError(w, r, "handleCreatePurchase", err)
		return
	}

	lot, err := s.ledger.CreatePurchase(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "handleCreatePurchase", err)
		return
	}
	JSON(w, http.StatusCreated, storeConverter.ConvertPurchaseToStore(lot))
}

func (s *Server) handlePreviewPurchase(w http.ResponseWriter, r *http.Request) {
	var req restModel.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := restConverter.ConvertPurchaseRequest(req)
	if err != nil {
		writeServiceError(w, r, "handlePreviewPurchase", err)
		return
	}

	pv, err := s.ledger.PreviewPurchase(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "handlePreviewPurchase", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertPurchasePreview(pv))
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeletePurchase(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, "handleDeletePurchase", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := s.ledger.ListSales(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleListSales", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertSales(sales))
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req restModel.SaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := restConverter.ConvertSaleRequest(req)
	if err != nil {
		writeServiceError(w, r, "handleCreateSale", err)
		return
	}

	sale, err := s.ledger.CreateSale(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "handleCreateSale", err)
		return
	}
	JSON(w, http.StatusCreated, storeConverter.ConvertSaleToStore(sale))
}

func (s *Server) handlePreviewSale(w http.ResponseWriter, r *http.Request) {
	var req restModel.SaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := restConverter.ConvertSaleRequest(req)
	if err != nil {
		writeServiceError(w, r, "handlePreviewSale", err)
		return
	}

	pv, err := s.ledger.PreviewSale(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "handlePreviewSale", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertSalePreview(pv))
}

func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	var req restModel.SaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, err := restConverter.ConvertSaleRequest(req)
	if err != nil {
		writeServiceError(w, r, "handleUpdateSale", err)
		return
	}

	sale, err := s.ledger.UpdateSale(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, "handleUpdateSale", err)
		return
	}
	JSON(w, http.StatusOK, storeConverter.ConvertSaleToStore(sale))
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteSale(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, "handleDeleteSale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAvailableLots(w http.ResponseWriter, r *http.Request) {
	lots, err := s.ledger.AvailableLots(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleAvailableLots", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertAvailableLots(lots))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.PortfolioSummary(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleSummary", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertSummary(summary))
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{
				"field":  "limit",
				"reason": "must be a non-negative integer",
			})
			return
		}
		limit = n
	}

	txs, err := s.ledger.RecentTransactions(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, "handleRecentTransactions", err)
		return
	}
	JSON(w, http.StatusOK, restConverter.ConvertTransactions(txs))
}

func (s *Server) handleGetFeeSettings(w http.ResponseWriter, r *http.Request) {
	fs, err := s.ledger.GetFeeSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleGetFeeSettings", err)
		return
	}
	JSON(w, http.StatusOK, storeConverter.ConvertFeeSettingsToStore(fs))
}

func (s *Server) handleSaveFeeSettings(w http.ResponseWriter, r *http.Request) {
	var req storeModel.FeeSettings
	if !decodeJSON(w, r, &req) {
		return
	}

	fs := storeConverter.ConvertFeeSettings(req)
	if err := s.ledger.SaveFeeSettings(r.Context(), fs); err != nil {
		writeServiceError(w, r, "handleSaveFeeSettings", err)
		return
	}
	JSON(w, http.StatusOK, storeConverter.ConvertFeeSettingsToStore(fs))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	body, filename, err := s.ledger.ExportReport(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleReport", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	link, err := s.ledger.UploadReport(r.Context())
	if err != nil {
		writeServiceError(w, r, "handleUploadReport", err)
		return
	}
	JSON(w, http.StatusOK, restModel.UploadResponse{Link: link})
}
