package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

type ReportService interface {
	ExportOrders(status model.OrderStatus) (*bytes.Buffer, string, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportService{orderRepo: orderRepo}
}

var orderExportHeader = []string{
	"Order No", "Status", "Buyer Code", "Buyer Name", "Item", "Metal",
	"Purity", "Weight (g)", "Size", "Qty", "Due Date", "Craftsman",
	"Estimated Days", "Rejection Reason", "Created At", "Completed At",
}

// ExportOrders renders the order book as an XLSX workbook. An empty
// status exports every order.
func (s *reportService) ExportOrders(status model.OrderStatus) (*bytes.Buffer, string, error) {
	logger.Info("Exporting orders to XLSX", map[string]interface{}{
		"status": status,
	})

	orders, err := s.orderRepo.List(status)
	if err != nil {
		logger.Error("Failed to list orders for export", err, map[string]interface{}{
			"status": status,
		})
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	for i, title := range orderExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, "", err
		}
	}
	endCell, _ := excelize.CoordinatesToCellName(len(orderExportHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", endCell, headerStyle); err != nil {
		return nil, "", err
	}

	for row, order := range orders {
		values := orderExportRow(&order)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "P", 16); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to write XLSX buffer", err, nil)
		return nil, "", err
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	logger.Info("Order export generated", map[string]interface{}{
		"orders":   len(orders),
		"filename": filename,
	})
	return buf, filename, nil
}

func orderExportRow(order *model.Order) []interface{} {
	buyerCode := ""
	buyerName := ""
	if order.Partner != nil {
		buyerCode = order.Partner.BPCode
		buyerName = order.Partner.BusinessName
	}
	craftsman := ""
	if order.Craftsman != nil {
		craftsman = order.Craftsman.CodeName()
	}
	dueDate := ""
	if order.DueDate != nil {
		dueDate = order.DueDate.Format("2006-01-02")
	}
	completedAt := ""
	if order.CompletedAt != nil {
		completedAt = order.CompletedAt.Format("2006-01-02 15:04")
	}
	return []interface{}{
		order.OrderNo,
		string(order.Status),
		buyerCode,
		buyerName,
		order.ItemName,
		order.MetalType,
		order.Purity,
		order.WeightGrams,
		order.Size,
		order.Quantity,
		dueDate,
		craftsman,
		order.EstimatedDays,
		order.RejectionReason,
		order.CreatedAt.Format("2006-01-02 15:04"),
		completedAt,
	}
}
