package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vsplit/vsplit/internal/entity"
	"github.com/vsplit/vsplit/internal/split"
)

// Service produces XLSX bytes for settlement exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SettlementXLSX returns an XLSX workbook (as bytes) with one row per member
// showing their items, tax and tip shares, total owed, and payment status.
func (s *Service) SettlementXLSX(session *entity.Session, alloc split.Allocation) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Settlement"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Member",
		"Items",
		"Items Total",
		"Tax Share",
		"Tip Share",
		"Total Owed",
		"Payment Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, share := range alloc.Shares {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		items := ""
		for i, it := range share.Items {
			if i > 0 {
				items += ", "
			}
			items += it.Name
			if it.SharedBy > 1 {
				items += fmt.Sprintf(" (1/%d)", it.SharedBy)
			}
		}

		write(1, share.Name)
		write(2, truncate(items, 140))
		write(3, share.ItemsTotal)
		write(4, share.TaxShare)
		write(5, share.TipShare)
		write(6, share.Total)
		write(7, string(share.PaymentStatus))

		row++
	}

	// Footer with the bill the shares reassemble into.
	writeFooter := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row+1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	restaurant := ""
	if session.Bill != nil {
		restaurant = session.Bill.RestaurantName
	}
	writeFooter(1, "Bill")
	writeFooter(2, restaurant)
	writeFooter(6, alloc.BillTotal)

	_ = f.SetColWidth(sheet, "A", "A", 20) // member
	_ = f.SetColWidth(sheet, "B", "B", 48) // items
	_ = f.SetColWidth(sheet, "C", "F", 14) // amounts
	_ = f.SetColWidth(sheet, "G", "G", 16) // status

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"session_id", session.ID,
		"rows", len(alloc.Shares),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
