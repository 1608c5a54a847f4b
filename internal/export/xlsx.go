package export

import (
	"fmt"
	"io"

	"flagman/parser/internal/domain"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet holding the export.
const SheetName = "Flagman"

const maxImageColumns = 15

// Options controls workbook rendering.
type Options struct {
	// RichDescription emits the description's inner markup instead of
	// the flattened text.
	RichDescription bool
}

// Write renders the records as a single-worksheet XLSX workbook with a
// header row and a stable column order: fixed fields, numbered image
// columns, attribute columns in first-seen order, source links last.
func Write(w io.Writer, records []*domain.ProductRecord, opts Options) error {
	f, err := Workbook(records, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Workbook builds the XLSX file in memory.
func Workbook(records []*domain.ProductRecord, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	headers := buildHeaders(records)
	for col, h := range headers {
		if err := setCell(f, col+1, 1, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, rec := range records {
		values := rowValues(rec, opts)
		for col, h := range headers {
			v, ok := values[h]
			if !ok {
				continue
			}
			if err := setCell(f, col+1, rowIdx+2, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func buildHeaders(records []*domain.ProductRecord) []string {
	headers := []string{
		"code", "brand", "price",
		"title (UA)", "title (RU)",
		"description (UA)", "description (RU)",
	}
	for i := 1; i <= maxImageColumns; i++ {
		headers = append(headers, fmt.Sprintf("image_%d", i))
	}

	// Attribute columns in first-seen order across the whole run
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, a := range rec.AttributesUA {
			headers = appendAttrHeader(headers, seen, a.Key+" (UA)")
		}
		for _, a := range rec.AttributesRU {
			headers = appendAttrHeader(headers, seen, a.Key+" (RU)")
		}
	}

	return append(headers, "link (UA)", "link (RU)")
}

func appendAttrHeader(headers []string, seen map[string]struct{}, name string) []string {
	if _, ok := seen[name]; ok {
		return headers
	}
	seen[name] = struct{}{}
	return append(headers, name)
}

func rowValues(rec *domain.ProductRecord, opts Options) map[string]string {
	descUA, descRU := rec.DescriptionPlainUA, rec.DescriptionPlainRU
	if opts.RichDescription {
		descUA, descRU = rec.DescriptionRichUA, rec.DescriptionRichRU
	}

	values := map[string]string{
		"code":             rec.Code,
		"brand":            rec.Brand,
		"price":            rec.Price,
		"title (UA)":       rec.TitleUA,
		"title (RU)":       rec.TitleRU,
		"description (UA)": descUA,
		"description (RU)": descRU,
		"link (UA)":        rec.LinkUA,
		"link (RU)":        rec.LinkRU,
	}

	for i, img := range rec.Images {
		if i >= maxImageColumns {
			break
		}
		values[fmt.Sprintf("image_%d", i+1)] = img
	}
	for _, a := range rec.AttributesUA {
		values[a.Key+" (UA)"] = a.Value
	}
	for _, a := range rec.AttributesRU {
		values[a.Key+" (RU)"] = a.Value
	}

	return values
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to address cell (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
