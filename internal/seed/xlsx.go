package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/krisikbazar/market-service/internal/catalog"
)

// priceRow is one imported price sheet row.
type priceRow struct {
	CropName       string
	CropNameNepali string
	MarketName     string
	PricePerKg     decimal.Decimal
	Date           time.Time
}

// parsePriceRow parses one data row from the import sheet. Expected columns:
// crop_name, crop_name_nepali, market_name, price_per_kg, date (YYYY-MM-DD,
// blank means today). Short rows are padded so trailing blanks are legal.
func parsePriceRow(row []string) (priceRow, error) {
	for len(row) < 5 {
		row = append(row, "")
	}

	var pr priceRow
	pr.CropName = strings.TrimSpace(row[0])
	if pr.CropName == "" {
		return pr, fmt.Errorf("missing crop name")
	}
	pr.CropNameNepali = strings.TrimSpace(row[1])

	pr.MarketName = strings.TrimSpace(row[2])
	if pr.MarketName == "" {
		return pr, fmt.Errorf("missing market name")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return pr, fmt.Errorf("invalid price %q: %w", row[3], err)
	}
	if price.IsNegative() {
		return pr, fmt.Errorf("negative price %s", price)
	}
	pr.PricePerKg = price

	if d := strings.TrimSpace(row[4]); d != "" {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			return pr, fmt.Errorf("invalid date %q: %w", row[4], err)
		}
		pr.Date = date
	} else {
		pr.Date = time.Now().Truncate(24 * time.Hour)
	}

	return pr, nil
}

// LoadXLSX imports prices from an XLSX sheet. Crops are created on demand;
// markets must already exist because the sheet carries no coordinates and a
// market without a coordinate cannot be ranked. Rows that fail to parse or
// name an unknown market are skipped with a warning, not fatal.
func (l *Loader) LoadXLSX(ctx context.Context, path string) (int64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var imported int64
	// Skip the header row.
	for i, row := range rows[1:] {
		pr, err := parsePriceRow(row)
		if err != nil {
			l.logger.Warn().Err(err).Int("row", i+2).Msg("Skipping import row")
			continue
		}

		var cropID int64
		err = l.pool.QueryRow(ctx, `
			INSERT INTO crops (name, name_normalized, name_nepali)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET
				name_normalized = EXCLUDED.name_normalized,
				name_nepali =
					CASE WHEN EXCLUDED.name_nepali <> '' THEN EXCLUDED.name_nepali ELSE crops.name_nepali END
			RETURNING id
		`, pr.CropName, catalog.NormalizeName(pr.CropName), pr.CropNameNepali).Scan(&cropID)
		if err != nil {
			return imported, fmt.Errorf("import crop %q: %w", pr.CropName, err)
		}

		var marketID int64
		err = l.pool.QueryRow(ctx, `SELECT id FROM markets WHERE name = $1`, pr.MarketName).Scan(&marketID)
		if err != nil {
			l.logger.Warn().Str("market", pr.MarketName).Int("row", i+2).Msg("Skipping row for unknown market")
			continue
		}

		_, err = l.pool.Exec(ctx, `
			INSERT INTO prices (crop_id, market_id, price_per_kg, date, source)
			VALUES ($1, $2, $3, $4, 'import')
		`, cropID, marketID, pr.PricePerKg.String(), pr.Date)
		if err != nil {
			return imported, fmt.Errorf("import price row %d: %w", i+2, err)
		}
		imported++
	}

	l.logger.Info().Int64("prices", imported).Str("file", path).Msg("XLSX import complete")
	return imported, nil
}
