package storage

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pricetag-studio/internal/pricing"
)

// ExportItemsToExcel writes the session's items back out as a workbook in
// the same column layout the importer understands.
func ExportItemsToExcel(session *pricing.Session) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Товары"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Название", "Цена", "Цена со скидкой", "Дизайн", "Скидка", "Цена за 2", "Цена от 3",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, item := range session.Items {
		discountFlag := ""
		if item.HasDiscount != nil {
			if *item.HasDiscount {
				discountFlag = "да"
			} else {
				discountFlag = "нет"
			}
		}
		data := []interface{}{
			item.Label,
			item.Price,
			item.DiscountPrice,
			item.DesignType,
			discountFlag,
			zeroAsEmpty(item.PriceFor2),
			zeroAsEmpty(item.PriceFrom3),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheet, "A1", "G1", style)
	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func zeroAsEmpty(v float64) interface{} {
	if v == 0 {
		return ""
	}
	return v
}
