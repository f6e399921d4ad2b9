package telegram

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/gold_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/utils"
	tele "gopkg.in/telebot.v4"
)

const internalErrMsg = "something went wrong, try again later"

type LedgerService interface {
	PortfolioSummary(ctx context.Context) (model.PortfolioSummary, error)
	RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	AvailableLots(ctx context.Context) ([]model.LotAvailability, error)
}

type MarketService interface {
	GetSpotPrice(ctx context.Context) (model.SpotPrice, error)
	RefreshSpotPrice(ctx context.Context) error
}

type Controller struct {
	ledgerService LedgerService
	marketService MarketService
}

func NewController(ledgerService LedgerService, marketService MarketService) *Controller {
	return &Controller{
		ledgerService: ledgerService,
		marketService: marketService,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Reply("Gold tracker.\n\n" +
		"/price - gold spot price\n" +
		"/summary - portfolio summary\n" +
		"/recent - recent transactions\n" +
		"/lots - lots available to sell")
}

func (ctrl *Controller) SpotPrice(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	price, err := ctrl.marketService.GetSpotPrice(ctx)
	if err != nil {
		slog.Error("got error from marketService.GetSpotPrice", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.SpotPriceResponse(price))
}

// RefreshSpotPrice handles the inline refresh button under a price message.
func (ctrl *Controller) RefreshSpotPrice(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := ctrl.marketService.RefreshSpotPrice(ctx); err != nil {
		slog.Warn("refresh failed, showing cached price", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	price, err := ctrl.marketService.GetSpotPrice(ctx)
	if err != nil {
		slog.Error("got error from marketService.GetSpotPrice", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	_ = c.Respond()
	return c.Edit(telebotConverter.SpotPriceResponse(price))
}

func (ctrl *Controller) Summary(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	summary, err := ctrl.ledgerService.PortfolioSummary(ctx)
	if err != nil {
		slog.Error("got error from ledgerService.PortfolioSummary", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	if c.Callback() != nil {
		_ = c.Respond()
		return c.Edit(telebotConverter.SummaryResponse(summary))
	}
	return c.Send(telebotConverter.SummaryResponse(summary))
}

func (ctrl *Controller) RecentTransactions(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	txs, err := ctrl.ledgerService.RecentTransactions(ctx, 0)
	if err != nil {
		slog.Error("got error from ledgerService.RecentTransactions", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.RecentTransactionsResponse(txs))
}

func (ctrl *Controller) AvailableLots(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	lots, err := ctrl.ledgerService.AvailableLots(ctx)
	if err != nil {
		slog.Error("got error from ledgerService.AvailableLots", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.AvailableLotsResponse(lots))
}
