package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"housing-pipeline/models"
)

const defaultSheet = "Sheet1"

// XLSXWriter collects frames as worksheets of one workbook, saved on Close.
type XLSXWriter struct {
	path   string
	file   *excelize.File
	sheets int
	header int
}

// NewXLSXWriter prepares a workbook at path. Intermediate directories are created automatically.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}
	return &XLSXWriter{path: path, file: f, header: style}, nil
}

// WriteSheet adds frame as a worksheet named name, header row first.
func (x *XLSXWriter) WriteSheet(name string, frame models.Frame) error {
	if x.sheets == 0 {
		if err := x.file.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("xlsx: rename sheet: %w", err)
		}
	} else if _, err := x.file.NewSheet(name); err != nil {
		return fmt.Errorf("xlsx: add sheet %q: %w", name, err)
	}
	x.sheets++

	header := frame.Header()
	if err := x.setRow(name, 1, toCells(header)); err != nil {
		return err
	}
	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := x.file.SetCellStyle(name, "A1", last, x.header); err != nil {
			return fmt.Errorf("xlsx: style header: %w", err)
		}
	}

	for i := 0; i < frame.Rows(); i++ {
		cells := make([]interface{}, len(frame.Columns))
		for j, c := range frame.Columns {
			if c.Numeric {
				cells[j] = c.Num[i]
			} else {
				cells[j] = c.Text[i]
			}
		}
		if err := x.setRow(name, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func (x *XLSXWriter) setRow(sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := x.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx: write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// Close saves the workbook.
func (x *XLSXWriter) Close() error {
	defer x.file.Close()
	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
