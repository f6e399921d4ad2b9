package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/model/tg/tgCallback"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const dateLayout = "2006-01-02"

func SpotPriceResponse(price model.SpotPrice) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🪙 %s spot\n", price.Metal))
	sb.WriteString(fmt.Sprintf("Bid: %s\n", model.FormatMoney(price.Bid, price.Currency)))
	sb.WriteString(fmt.Sprintf("Ask: %s\n", model.FormatMoney(price.Ask, price.Currency)))
	sb.WriteString(fmt.Sprintf("As of %s UTC", price.AsOf.UTC().Format("2006-01-02 15:04")))

	markup.Inline(markup.Row(markup.Data("🔄 Refresh", tgCallback.RefreshPrice)))
	return sb.String(), markup
}

func SummaryResponse(s model.PortfolioSummary) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("📊 Portfolio\n")
	sb.WriteString(fmt.Sprintf("Holdings: %s %s\n", s.CurrentHoldings, s.Unit))
	sb.WriteString(fmt.Sprintf("Invested: %s\n", model.FormatMoney(s.TotalInvestment, s.Currency)))
	sb.WriteString(fmt.Sprintf(
		"Profit: %s (%s%%)\n",
		model.FormatSignedMoney(s.TotalProfit, s.Currency),
		s.ProfitPercentage.StringFixed(2),
	))
	if s.SpotPrice != nil {
		sb.WriteString(fmt.Sprintf(
			"Estimated value: %s at %s bid\n",
			model.FormatMoney(s.EstimatedValue, s.Currency),
			model.FormatMoney(s.SpotPrice.Bid, s.SpotPrice.Currency),
		))
	}
	sb.WriteString(fmt.Sprintf("%d purchases, %d sales", s.PurchasesCount, s.SalesCount))

	markup.Inline(markup.Row(markup.Data("🔄 Refresh", tgCallback.RefreshSummary)))
	return sb.String(), markup
}

func RecentTransactionsResponse(txs []model.Transaction) string {
	if len(txs) == 0 {
		return "No transactions yet"
	}

	var sb strings.Builder
	sb.WriteString("🧾 Recent transactions\n\n")
	for _, tx := range txs {
		switch tx.Type {
		case model.TransactionPurchase:
			sb.WriteString(fmt.Sprintf(
				"🟢 %s bought %s %s @ %s = %s",
				tx.Date.Format(dateLayout),
				tx.Quantity, tx.Unit,
				model.FormatMoney(tx.Price, tx.Currency),
				model.FormatMoney(tx.Total, tx.Currency),
			))
			if tx.ProductName != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", tx.ProductName))
			}
		case model.TransactionSale:
			profit := decimal.Zero
			if tx.Profit != nil {
				profit = *tx.Profit
			}
			sb.WriteString(fmt.Sprintf(
				"🔴 %s sold %s %s @ %s = %s, profit %s",
				tx.Date.Format(dateLayout),
				tx.Quantity, tx.Unit,
				model.FormatMoney(tx.Price, tx.Currency),
				model.FormatMoney(tx.Total, tx.Currency),
				model.FormatSignedMoney(profit, tx.Currency),
			))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func AvailableLotsResponse(lots []model.LotAvailability) string {
	if len(lots) == 0 {
		return "No lots with quantity left"
	}

	var sb strings.Builder
	sb.WriteString("📦 Available lots\n\n")
	for i, l := range lots {
		name := l.Lot.ProductName
		if name == "" {
			name = "Gold"
		}
		sb.WriteString(fmt.Sprintf(
			"%d. %s %s: %s of %s %s left, cost %s/%s\n",
			i+1,
			l.Lot.Date.Format(dateLayout),
			name,
			l.Available, l.Lot.Quantity, l.Lot.Unit,
			model.FormatMoney(l.Lot.CostBasisPerUnit(), l.Lot.Currency),
			l.Lot.Unit,
		))
	}
	return strings.TrimRight(sb.String(), "\n")
}
