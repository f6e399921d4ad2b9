package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/model"
)

const dateLayout = "2006-01-02"

func summaryMarkdown(s model.PortfolioSummary) string {
	var sb strings.Builder
	sb.WriteString("# Portfolio Summary\n\n")
	sb.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Current holdings | %s %s |\n", s.CurrentHoldings.String(), s.Unit)
	fmt.Fprintf(&sb, "| Total investment | %s |\n", model.FormatMoney(s.TotalInvestment, s.Currency))
	fmt.Fprintf(&sb, "| Total profit | %s |\n", model.FormatSignedMoney(s.TotalProfit, s.Currency))
	fmt.Fprintf(&sb, "| Profit %% | %s%% |\n", s.ProfitPercentage.StringFixed(2))
	fmt.Fprintf(&sb, "| Purchases / Sales | %d / %d |\n", s.PurchasesCount, s.SalesCount)

	if s.SpotPrice != nil {
		fmt.Fprintf(&sb, "| Spot bid | %s |\n", model.FormatMoney(s.SpotPrice.Bid, s.SpotPrice.Currency))
		fmt.Fprintf(&sb, "| Estimated value | %s |\n", model.FormatMoney(s.EstimatedValue, s.Currency))
		fmt.Fprintf(&sb, "\n_Spot price as of %s_\n", s.SpotPrice.AsOf.UTC().Format(time.RFC3339))
	} else {
		sb.WriteString("\n_Spot price unavailable_\n")
	}
	return sb.String()
}

func lotsMarkdown(lots []model.LotAvailability) string {
	var sb strings.Builder
	sb.WriteString("# Available Lots\n\n")
	if len(lots) == 0 {
		sb.WriteString("_Nothing left to sell._\n")
		return sb.String()
	}

	sb.WriteString("| Date | Product | Bought | Sold | Available | Cost/Unit |\n")
	sb.WriteString("|---|---|---:|---:|---:|---:|\n")
	for _, l := range lots {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s %s | %s |\n",
			l.Lot.Date.Format(dateLayout),
			cell(l.Lot.ProductName),
			l.Lot.Quantity.String(),
			l.Sold.String(),
			l.Available.String(),
			l.Lot.Unit,
			model.FormatMoney(l.Lot.CostBasisPerUnit(), l.Lot.Currency),
		)
	}
	return sb.String()
}

func transactionsMarkdown(txs []model.Transaction) string {
	var sb strings.Builder
	sb.WriteString("# Recent Transactions\n\n")
	if len(txs) == 0 {
		sb.WriteString("_No transactions yet._\n")
		return sb.String()
	}

	sb.WriteString("| Date | Type | Quantity | Price | Total | Profit | Counterparty |\n")
	sb.WriteString("|---|---|---:|---:|---:|---:|---|\n")
	for _, tx := range txs {
		profit := ""
		if tx.Profit != nil {
			profit = model.FormatSignedMoney(*tx.Profit, tx.Currency)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s %s | %s | %s | %s | %s |\n",
			tx.Date.Format(dateLayout),
			tx.Type,
			tx.Quantity.String(),
			tx.Unit,
			model.FormatMoney(tx.Price, tx.Currency),
			model.FormatMoney(tx.Total, tx.Currency),
			profit,
			cell(tx.Source),
		)
	}
	return sb.String()
}

// cell keeps free text from breaking the table.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
