package server

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"DeltaV/internal/rocket"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sweepSheet      = "Sweep"
	inputsSheet     = "Inputs"
)

// sweepWorkbook is swapped in tests to simulate export failures.
var sweepWorkbook = writeSweepWorkbook

// writeSweepWorkbook writes the sweep as an XLSX workbook: one sheet of
// (fill, delta-v) rows and one sheet describing the inputs.
func writeSweepWorkbook(w io.Writer, req rocket.Request, policy rocket.Policy, points []rocket.SweepPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sweepSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sweepSheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", []any{"Fill fraction", "Delta-v (m/s)"}); err != nil {
		return err
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []any{p.Fill, p.DeltaV}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sweep sheet: %w", err)
	}

	if _, err := f.NewSheet(inputsSheet); err != nil {
		return fmt.Errorf("add inputs sheet: %w", err)
	}
	rows := [][]any{
		{"Material", req.Material},
		{"Fuel", req.Fuel},
		{"Height (m)", req.Height},
		{"Diameter (m)", req.Diameter},
		{"Geometry policy", policy.Name},
		{"Void ratio", policy.VoidRatio},
		{"Capacity exponent", policy.Exponent},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(inputsSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
