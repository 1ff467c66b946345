// Package recon turns raw bank/card statement text into statement lines
// and matches them against unreconciled ledger transactions.
package recon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

// ErrHeaderMissing is returned when the statement header has no
// recognizable Date, Description or Amount column. This fails the whole
// parse; row-level problems only skip the row.
var ErrHeaderMissing = errors.New("recon: required statement columns not found")

// Header aliases, matched case-insensitively as substrings after
// stripping whitespace.
var (
	descriptionAliases = []string{"description", "details", "transaction", "payee"}
	amountAliases      = []string{"amount", "value"}
)

// ParseResult is the outcome of parsing one statement. Skipped counts
// data lines dropped for short columns, unparseable dates or
// non-numeric amounts, so callers can always report skipped + parsed.
type ParseResult struct {
	Lines   []domain.StatementLine
	Skipped int
}

// ParseStatement parses raw delimited statement text: one header line
// followed by data lines, comma-delimited with optional double-quote
// field quoting. The amount sign is preserved as-is from the source.
func ParseStatement(raw string) (*ParseResult, error) {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil, ErrHeaderMissing
	}

	header, err := splitFields(lines[0])
	if err != nil {
		return nil, fmt.Errorf("ParseStatement: header: %w", err)
	}

	dateIdx := findColumn(header, "date")
	descIdx := findColumnAny(header, descriptionAliases)
	amountIdx := findColumnAny(header, amountAliases)
	if dateIdx < 0 || descIdx < 0 || amountIdx < 0 {
		return nil, fmt.Errorf("%w: date=%t description=%t amount=%t",
			ErrHeaderMissing, dateIdx >= 0, descIdx >= 0, amountIdx >= 0)
	}

	minColumns := max(dateIdx, descIdx, amountIdx) + 1

	result := &ParseResult{}
	for _, line := range lines[1:] {
		fields, err := splitFields(line)
		if err != nil || len(fields) < minColumns {
			result.Skipped++
			continue
		}

		date, err := domain.ParseDate(fields[dateIdx])
		if err != nil {
			result.Skipped++
			continue
		}

		amount, err := parseAmount(fields[amountIdx])
		if err != nil {
			result.Skipped++
			continue
		}

		result.Lines = append(result.Lines, domain.StatementLine{
			ID:          uuid.New().String(),
			Date:        date,
			Description: strings.TrimSpace(fields[descIdx]),
			Amount:      amount,
		})
	}

	return result, nil
}

// splitLines separates raw text on \n or \r\n and drops blank lines.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// splitFields splits one line on commas, honoring double-quoted fields
// with "" escapes. Parsing per line means a quoted field cannot span
// lines.
func splitFields(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	return r.Read()
}

// normalizeHeader lowercases a header cell and strips all whitespace.
func normalizeHeader(cell string) string {
	return strings.ToLower(strings.Join(strings.Fields(cell), ""))
}

// findColumn returns the index of the first header cell containing
// alias, or -1.
func findColumn(header []string, alias string) int {
	for i, cell := range header {
		if strings.Contains(normalizeHeader(cell), alias) {
			return i
		}
	}
	return -1
}

func findColumnAny(header []string, aliases []string) int {
	for _, alias := range aliases {
		if i := findColumn(header, alias); i >= 0 {
			return i
		}
	}
	return -1
}

// parseAmount strips currency symbols and thousands separators before
// numeric parsing.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}
