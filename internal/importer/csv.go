// Package importer converts uploaded CSV recipient lists into the engine's
// line-oriented "address,amount" text form. It only reshapes the data;
// validation stays with the batch parser so imported and typed input go
// through the identical checks.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Result is the outcome of a CSV conversion.
type Result struct {
	Text     string // one "address,amount" pair per line
	RowCount int    // rows converted
	Skipped  int    // blank rows and a detected header row
}

// Convert reads CSV rows and emits batch text. The first two columns of each
// row are taken as address and amount; extra columns are ignored. A leading
// header row is detected by its address column not looking like a hex address.
func Convert(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		b       strings.Builder
		res     Result
		rowNum  int
		started bool
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum+1, err)
		}
		rowNum++

		addr, amount, ok := extractPair(record)
		if !ok {
			res.Skipped++
			continue
		}

		// A header like "address,amount" fails the hex check on its first row.
		if !started && looksLikeHeader(addr) {
			res.Skipped++
			continue
		}
		started = true

		b.WriteString(addr)
		b.WriteByte(',')
		b.WriteString(amount)
		b.WriteByte('\n')
		res.RowCount++
	}

	res.Text = b.String()

	slog.Info("csv converted",
		"rows", res.RowCount,
		"skipped", res.Skipped,
	)

	return &res, nil
}

// extractPair pulls the first two non-empty-trimmed columns of a row.
func extractPair(record []string) (addr, amount string, ok bool) {
	if len(record) < 2 {
		return "", "", false
	}
	addr = strings.TrimSpace(record[0])
	amount = strings.TrimSpace(record[1])
	if addr == "" && amount == "" {
		return "", "", false
	}
	return addr, amount, true
}

// looksLikeHeader reports whether a first-row address cell is label text
// rather than a 0x address.
func looksLikeHeader(addr string) bool {
	return !strings.HasPrefix(strings.ToLower(addr), "0x")
}
