// Package gridxlsx keeps the grid in a local .xlsx workbook.
package gridxlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	griddomain "github.com/Black-And-White-Club/step-bot/app/modules/grid/domain"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Store reads and writes one sheet of a workbook on disk. Every batch is
// a single save of the file.
type Store struct {
	path  string
	sheet string
	mu    sync.Mutex
}

// NewStore returns a Store for sheet in the workbook at path. The workbook
// is created on first write.
func NewStore(path, sheet string) *Store {
	if sheet == "" {
		sheet = defaultSheet
	}
	return &Store{path: path, sheet: sheet}
}

func (s *Store) Values(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gridxlsx.Values: open %s: %w", s.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("gridxlsx.Values: %w", err)
	}
	if idx == -1 {
		return nil, nil
	}

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("gridxlsx.Values: read sheet %q: %w", s.sheet, err)
	}
	return rows, nil
}

func (s *Store) WriteCells(ctx context.Context, cells []griddomain.CellWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f = excelize.NewFile()
	case err != nil:
		return fmt.Errorf("gridxlsx.WriteCells: open %s: %w", s.path, err)
	}
	defer f.Close()

	if err := ensureSheet(f, s.sheet); err != nil {
		return fmt.Errorf("gridxlsx.WriteCells: %w", err)
	}
	if err := setCells(f, s.sheet, cells); err != nil {
		return fmt.Errorf("gridxlsx.WriteCells: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("gridxlsx.WriteCells: save %s: %w", s.path, err)
	}
	return nil
}

// Export writes values as a new workbook with a single sheet.
func Export(w io.Writer, sheet string, values [][]string) error {
	if sheet == "" {
		sheet = defaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	var cells []griddomain.CellWrite
	for i, row := range values {
		for j, v := range row {
			if v != "" {
				cells = append(cells, griddomain.CellWrite{Row: i, Col: j, Value: v})
			}
		}
	}
	if err := setCells(f, sheet, cells); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ensureSheet makes sheet exist and be the only one in a fresh workbook.
func ensureSheet(f *excelize.File, sheet string) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx != -1 {
		return nil
	}
	idx, err = f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	f.SetActiveSheet(idx)

	if sheet != defaultSheet {
		if list := f.GetSheetList(); len(list) == 2 && list[0] == defaultSheet {
			rows, err := f.GetRows(defaultSheet)
			if err == nil && len(rows) == 0 {
				if err := f.DeleteSheet(defaultSheet); err != nil {
					return fmt.Errorf("drop default sheet: %w", err)
				}
				if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
					f.SetActiveSheet(idx)
				}
			}
		}
	}
	return nil
}

func setCells(f *excelize.File, sheet string, cells []griddomain.CellWrite) error {
	for _, c := range cells {
		name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
		if err != nil {
			return fmt.Errorf("cell %d,%d: %w", c.Row, c.Col, err)
		}
		if err := f.SetCellStr(sheet, name, c.Value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}
