package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/queiroz-sistemas/supermercado-api/models"
)

var orderExportHeader = []string{
	"Número",
	"Cliente",
	"Telefone",
	"Status",
	"Valor Total",
	"Data",
	"Forma",
	"Itens",
}

// BuildOrdersWorkbook renders a tenant's orders as an XLSX sheet for
// the panel's export button.
func BuildOrdersWorkbook(orders []models.Order) ([]byte, error) {
	f := excelize.NewFile()

	const sheet = "Pedidos"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range orderExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			f.Close()
			return nil, err
		}
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, order := range orders {
		row := i + 2
		values := []interface{}{
			order.Number,
			order.CustomerName,
			order.Phone,
			order.Status,
			order.Total,
			order.OrderedAt.Format("02/01/2006 15:04"),
			derefOr(order.DeliveryMethod, ""),
			summarizeItems(order.Items),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summarizeItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Product))
	}
	return strings.Join(parts, "; ")
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
