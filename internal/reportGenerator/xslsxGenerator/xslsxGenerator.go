package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/xuri/excelize/v2"
)

const (
	SheetPurchases   = "Purchases"
	SheetSales       = "Sales"
	SheetAllocations = "Allocations"
	SheetSummary     = "Summary"

	dateLayout = "2006-01-02"
)

var (
	purchaseHeaders = []string{
		"Date", "Product", "Quantity", "Unit", "Price/Unit", "Total", "Effective Price/Unit",
		"Effective Total", "Currency", "Source", "Order #", "Payment Methods", "Notes",
	}
	saleHeaders = []string{
		"Date", "Buyer", "Quantity", "Unit", "Price/Unit", "Total", "Original Cost", "Cost Basis",
		"Fees", "Profit", "ROI %", "Currency", "Order #", "Notes",
	}
	allocationHeaders = []string{
		"Sale Date", "Sale ID", "Purchase Date", "Purchase ID", "Product", "Quantity", "Cost Basis/Unit", "Cost Basis",
	}
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.LedgerReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug(
		"Generate start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("purchases", len(report.Purchases)),
		slog.Int("sales", len(report.Sales)),
	)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#fff2cc"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	fillers := []struct {
		name string
		fill func(f *excelize.File, sheet string, report model.LedgerReport) error
	}{
		{SheetPurchases, g.fillPurchases},
		{SheetSales, g.fillSales},
		{SheetAllocations, g.fillAllocations},
		{SheetSummary, g.fillSummary},
	}

	for _, filler := range fillers {
		if _, err = f.NewSheet(filler.name); err != nil {
			slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
		if err = filler.fill(f, filler.name, report); err != nil {
			slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", filler.name), slog.String("err", err.Error()))
			return nil, "", err
		}
		if filler.name != SheetSummary {
			if err = f.SetCellStyle(filler.name, "A1", lastHeaderCell(filler.name), headerStyle); err != nil {
				return nil, "", fmt.Errorf("apply header style: %w", err)
			}
		}
	}

	// the default sheet is left empty
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func lastHeaderCell(sheet string) string {
	n := 1
	switch sheet {
	case SheetPurchases:
		n = len(purchaseHeaders)
	case SheetSales:
		n = len(saleHeaders)
	case SheetAllocations:
		n = len(allocationHeaders)
	}
	cell, _ := excelize.CoordinatesToCellName(n, 1)
	return cell
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func headerRow(headers []string) []any {
	res := make([]any, len(headers))
	for i, h := range headers {
		res[i] = h
	}
	return res
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func (g *XSLSXGenerator) fillPurchases(f *excelize.File, sheet string, report model.LedgerReport) error {
	if err := setRow(f, sheet, 1, headerRow(purchaseHeaders)); err != nil {
		return err
	}

	for i, lot := range report.Purchases {
		methods := make([]string, 0, len(lot.PaymentMethods))
		for _, m := range lot.PaymentMethods {
			methods = append(methods, string(m))
		}

		err := setRow(f, sheet, i+2, []any{
			formatDate(lot.Date),
			lot.ProductName,
			lot.Quantity.InexactFloat64(),
			string(lot.Unit),
			lot.PricePerUnit.InexactFloat64(),
			lot.TotalPrice.InexactFloat64(),
			lot.CostBasisPerUnit().InexactFloat64(),
			lot.Investment().InexactFloat64(),
			string(lot.Currency),
			lot.Source,
			lot.OrderNumber,
			strings.Join(methods, ", "),
			lot.DisplayNotes(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillSales(f *excelize.File, sheet string, report model.LedgerReport) error {
	if err := setRow(f, sheet, 1, headerRow(saleHeaders)); err != nil {
		return err
	}

	for i, sale := range report.Sales {
		err := setRow(f, sheet, i+2, []any{
			formatDate(sale.Date),
			sale.Buyer,
			sale.Quantity.InexactFloat64(),
			string(sale.Unit),
			sale.PricePerUnit.InexactFloat64(),
			sale.TotalPrice.InexactFloat64(),
			sale.OriginalPurchasePrice.InexactFloat64(),
			sale.TotalCostBasis.InexactFloat64(),
			sale.TotalFees.InexactFloat64(),
			sale.Profit.InexactFloat64(),
			sale.ProfitPercentage.Round(2).InexactFloat64(),
			string(sale.Currency),
			sale.OrderNumber,
			sale.DisplayNotes(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillAllocations(f *excelize.File, sheet string, report model.LedgerReport) error {
	if err := setRow(f, sheet, 1, headerRow(allocationHeaders)); err != nil {
		return err
	}

	products := make(map[string]string, len(report.Purchases))
	for _, lot := range report.Purchases {
		products[lot.ID] = lot.ProductName
	}

	row := 2
	for _, sale := range report.Sales {
		for _, alloc := range sale.Allocations {
			err := setRow(f, sheet, row, []any{
				formatDate(sale.Date),
				sale.ID,
				formatDate(alloc.LotDate),
				alloc.LotID,
				products[alloc.LotID],
				alloc.Quantity.InexactFloat64(),
				alloc.CostBasisPerUnit.InexactFloat64(),
				alloc.CostBasis.InexactFloat64(),
			})
			if err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillSummary(f *excelize.File, sheet string, report model.LedgerReport) error {
	s := report.Summary
	rows := [][]any{
		{"Generated At", report.GeneratedAt.Format(time.RFC3339)},
		{"Current Holdings", s.CurrentHoldings.InexactFloat64(), string(s.Unit)},
		{"Total Investment", s.TotalInvestment.InexactFloat64(), string(s.Currency)},
		{"Total Profit", s.TotalProfit.InexactFloat64(), string(s.Currency)},
		{"Profit %", s.ProfitPercentage.Round(2).InexactFloat64()},
		{"Purchases", s.PurchasesCount},
		{"Sales", s.SalesCount},
	}
	if s.SpotPrice != nil {
		rows = append(rows,
			[]any{"Spot Bid", s.SpotPrice.Bid.InexactFloat64(), string(s.SpotPrice.Currency)},
			[]any{"Spot As Of", s.SpotPrice.AsOf.Format(time.RFC3339)},
			[]any{"Estimated Value", s.EstimatedValue.InexactFloat64(), string(s.Currency)},
		)
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 20)
}
