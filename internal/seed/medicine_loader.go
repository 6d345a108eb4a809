package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

// Columns of the medicine catalog files, after a header row.
const (
	colName = iota
	colCode
	colGroup
	colStock
	colPrice
	colHowToUse
	colSideEffects
	minColumns = colPrice + 1
)

// MedicineStore is the slice of the store the loader writes through.
type MedicineStore interface {
	CountMedicines(ctx context.Context) (int64, error)
	ListGroupNames(ctx context.Context) ([]string, error)
	CreateGroup(ctx context.Context, name string) (*domain.MedicineGroup, error)
	CreateMedicine(ctx context.Context, m domain.Medicine) (*domain.Medicine, error)
}

// Result counts what an import did.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Groups   int      `json:"groups_created"`
	Errors   []string `json:"errors,omitempty"`
}

// LoadMedicinesFile seeds the catalog from a CSV file, but only into an
// empty medicines table. A missing file is not an error.
func LoadMedicinesFile(ctx context.Context, st MedicineStore, csvPath string, logger *log.Logger) error {
	n, err := st.CountMedicines(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Printf("seed: medicines already present (%d), skipping %s", n, csvPath)
		return nil
	}

	file, err := os.Open(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Printf("seed: medicine catalog %s not found, skipping", csvPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open medicine catalog %s: %w", csvPath, err)
	}
	defer file.Close()

	res, err := ImportCSV(ctx, st, file)
	if err != nil {
		return err
	}
	logger.Printf("seed: medicine catalog imported=%d skipped=%d groups=%d", res.Imported, res.Skipped, res.Groups)
	return nil
}

// ImportCSV reads catalog rows from CSV, skipping the header.
func ImportCSV(ctx context.Context, st MedicineStore, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return Result{}, fmt.Errorf("%w: unable to read medicine header: %v", domain.ErrInvalidInput, err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: unable to read medicine row: %v", domain.ErrInvalidInput, err)
		}
		records = append(records, record)
	}
	return importRecords(ctx, st, records)
}

// ImportXLSX reads catalog rows from the first sheet of a workbook,
// skipping the header.
func ImportXLSX(ctx context.Context, st MedicineStore, data []byte) (Result, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: unable to parse workbook: %v", domain.ErrInvalidInput, err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 1 {
		return Result{}, fmt.Errorf("%w: workbook is empty or missing header row", domain.ErrInvalidInput)
	}

	var records [][]string
	for _, row := range file.Sheets[0].Rows[1:] {
		if row == nil {
			continue
		}
		record := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			record = append(record, cell.String())
		}
		records = append(records, record)
	}
	return importRecords(ctx, st, records)
}

func importRecords(ctx context.Context, st MedicineStore, records [][]string) (Result, error) {
	var res Result

	names, err := st.ListGroupNames(ctx)
	if err != nil {
		return res, err
	}
	groups := make(map[string]bool, len(names))
	for _, name := range names {
		groups[name] = true
	}

	for i, record := range records {
		line := i + 2
		m, err := parseRecord(record)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if m.GroupName == "" {
			m.GroupName = "General"
		}
		if !groups[m.GroupName] {
			if _, err := st.CreateGroup(ctx, m.GroupName); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: group %s: %v", line, m.GroupName, err))
				continue
			} else if err == nil {
				res.Groups++
			}
			groups[m.GroupName] = true
		}
		if _, err := st.CreateMedicine(ctx, m); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

func parseRecord(record []string) (domain.Medicine, error) {
	if len(record) < minColumns {
		return domain.Medicine{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(record))
	}
	get := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	name := get(colName)
	if name == "" {
		return domain.Medicine{}, errors.New("name is required")
	}
	stock, err := strconv.ParseInt(get(colStock), 10, 64)
	if err != nil || stock < 0 {
		return domain.Medicine{}, fmt.Errorf("invalid stock %q", get(colStock))
	}
	price, err := decimal.NewFromString(get(colPrice))
	if err != nil || price.IsNegative() {
		return domain.Medicine{}, fmt.Errorf("invalid price %q", get(colPrice))
	}
	return domain.Medicine{
		Name:        name,
		Code:        get(colCode),
		GroupName:   get(colGroup),
		Stock:       stock,
		Price:       price,
		HowToUse:    get(colHowToUse),
		SideEffects: get(colSideEffects),
	}, nil
}
