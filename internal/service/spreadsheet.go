package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	productImportSheet = "Sheet1"
	orderExportSheet   = "Orders"
)

// product import columns
const (
	colName = iota
	colCategory
	colPrice
	colStock
	colDescription
)

var orderExportHeader = []interface{}{
	"Order ID", "User ID", "Status", "Tracking Number", "Total",
	"Items", "Recipient", "Phone", "Address", "City", "Postal Code", "Country", "Created At",
}

// ParseProductSheet reads products from the first sheet of an xlsx workbook.
// The header row is skipped; invalid rows are counted as skipped with a reason.
func ParseProductSheet(r io.Reader) ([]*domain.Product, *domain.ImportResult, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidSpreadsheet, err)
	}
	defer xlsx.Close()

	rows, err := xlsx.GetRows(productImportSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidSpreadsheet, err)
	}

	result := &domain.ImportResult{}
	var products []*domain.Product
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if isBlankRow(row) {
			continue
		}

		p, err := productFromRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		products = append(products, p)
	}
	return products, result, nil
}

func productFromRow(row []string) (*domain.Product, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	name := cell(colName)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	price, err := strconv.ParseFloat(cell(colPrice), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", cell(colPrice))
	}
	stock := 0
	if raw := cell(colStock); raw != "" {
		if stock, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid stock %q", raw)
		}
	}

	p := &domain.Product{
		Name:        name,
		Slug:        domain.Slugify(name),
		Category:    cell(colCategory),
		Price:       price,
		Stock:       stock,
		Description: cell(colDescription),
		Images:      []string{},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteOrderSheet writes orders as an xlsx workbook to w
func WriteOrderSheet(w io.Writer, orders []*domain.Order) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if err := xlsx.SetSheetName("Sheet1", orderExportSheet); err != nil {
		return err
	}
	if err := xlsx.SetSheetRow(orderExportSheet, "A1", &orderExportHeader); err != nil {
		return err
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			o.ID,
			o.UserID,
			o.Status.String(),
			o.TrackingNumber,
			o.Total,
			describeItems(o.Items),
			o.ShippingInfo.Name,
			o.ShippingInfo.Phone,
			o.ShippingInfo.Address,
			o.ShippingInfo.City,
			o.ShippingInfo.PostalCode,
			o.ShippingInfo.Country,
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := xlsx.SetSheetRow(orderExportSheet, cell, &row); err != nil {
			return err
		}
	}

	return xlsx.Write(w)
}

func describeItems(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		label := it.Name
		if it.Variant != "" {
			label += " (" + it.Variant + ")"
		}
		parts = append(parts, fmt.Sprintf("%s x%d", label, it.Quantity))
	}
	return strings.Join(parts, ", ")
}
