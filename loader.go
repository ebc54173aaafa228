package coinfolio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the timestamp format of exchange exports, always in UTC.
const TimeLayout = "2006-01-02 15:04:05"

// timeLayouts are tried in order when reading UTC_Time.
var timeLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"06-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// requiredColumns must be present in the header of every transaction file.
var requiredColumns = []string{"User_ID", "UTC_Time", "Account", "Operation", "Coin", "Change"}

// FindTransactionFiles returns every csv file under dir, recursively, in lexical order.
func FindTransactionFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: transactions directory %q", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("cannot read transactions directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrNotFound, dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot walk transactions directory %q: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no transaction files found in %q", ErrNotFound, dir)
	}
	slices.Sort(files)
	return files, nil
}

// LoadTransactions reads every transaction file under dir and concatenates their rows.
// Files without rows are skipped, but at least one row must be loaded.
func LoadTransactions(dir string, logger *slog.Logger) ([]RawTransaction, error) {
	files, err := FindTransactionFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []RawTransaction
	for _, file := range files {
		rows, err := ReadTransactionFile(file)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			logger.Debug("skipping empty transaction file", "file", file)
			continue
		}
		logger.Debug("loaded transaction file", "file", file, "rows", len(rows))
		all = append(all, rows...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no transactions in any of the %d files in %q", ErrValidation, len(files), dir)
	}
	return all, nil
}

// ReadTransactionFile parses a single csv export. Rows are tagged with the file base name.
func ReadTransactionFile(path string) ([]RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open transaction file %q: %w", path, err)
	}
	defer f.Close()

	rows, err := readTransactions(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("transaction file %q: %w", path, err)
	}
	return rows, nil
}

func readTransactions(r io.Reader, source string) ([]RawTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil // no header, no rows
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header: %v", ErrValidation, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff") // excel BOM
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrValidation, col)
		}
	}

	var rows []RawTransaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		line, _ := cr.FieldPos(0)
		field := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if slices.IndexFunc(record, func(s string) bool { return strings.TrimSpace(s) != "" }) < 0 {
			continue // blank line
		}

		on, err := parseTime(field("UTC_Time"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrValidation, line, err)
		}
		change, err := decimal.NewFromString(field("Change"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid Change %q: %v", ErrValidation, line, field("Change"), err)
		}
		rows = append(rows, RawTransaction{
			UserID:     field("User_ID"),
			Time:       on,
			Account:    field("Account"),
			Operation:  field("Operation"),
			Coin:       field("Coin"),
			Change:     change,
			SourceFile: source,
		})
	}
	return rows, nil
}

// parseTime reads a UTC timestamp using the first matching layout.
func parseTime(s string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse UTC_Time %q", s)
}
