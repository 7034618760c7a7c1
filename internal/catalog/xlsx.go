package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// Well-known header names; any other header becomes a specification
// attribute keyed by its snake_cased header.
const (
	colCode        = "sku_code"
	colDescription = "description"
	colCategory    = "category"
)

// XLSXSource reads catalog entries from the first sheet of a workbook.
// Row 1 is the header; sku_code, description and category map to the
// entry fields and every remaining non-empty cell becomes a
// specification attribute.
type XLSXSource struct {
	path   string
	logger *slog.Logger
}

var _ Source = (*XLSXSource)(nil)

func NewXLSXSource(path string, logger *slog.Logger) *XLSXSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSource{path: path, logger: logger}
}

func (s *XLSXSource) Load(ctx context.Context) ([]entity.CatalogEntry, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", common.ErrInvalidInput, s.path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		s.logger.Warn("catalog.workbook_empty", "path", s.path)
		return []entity.CatalogEntry{}, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = headerKey(h)
	}

	var entries []entity.CatalogEntry
	for rowIdx, row := range rows[1:] {
		e := entity.CatalogEntry{Specifications: map[string]string{}}
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			val := strings.TrimSpace(cell)
			if val == "" {
				continue
			}
			switch headers[i] {
			case colCode:
				e.Code = val
			case colDescription:
				e.Description = val
			case colCategory:
				e.Category = val
			default:
				e.Specifications[headers[i]] = val
			}
		}
		if e.Code == "" {
			s.logger.Warn("catalog.entry_skipped",
				"reason", "missing sku_code",
				"row", rowIdx+2)
			continue
		}
		if len(e.Specifications) == 0 {
			e.Specifications = nil
		}
		entries = append(entries, e)
	}

	s.logger.Info("catalog.loaded", "source", "xlsx", "path", s.path, "entries", len(entries))
	return entries, nil
}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return h
}
