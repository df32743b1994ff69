package main

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/iho/banky/internal/adapter/http/dto"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// csvRow is one exported transaction.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Type        string `csv:"type"`
	Balance     string `csv:"balance"`
}

func csvRows(res *dto.ResultResponse) []*csvRow {
	rows := make([]*csvRow, 0, len(res.Transactions))
	for _, tx := range res.Transactions {
		row := &csvRow{
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Currency:    tx.Currency,
			Type:        tx.Type,
		}
		if tx.Date != nil {
			row.Date = *tx.Date
		}
		if tx.Balance != nil {
			row.Balance = tx.Balance.StringFixed(2)
		}
		rows = append(rows, row)
	}
	return rows
}

func renderResult(w io.Writer, format string, res *dto.ResultResponse) error {
	switch format {
	case formatJSON:
		return printJSON(w, res)
	case formatCSV:
		return gocsv.Marshal(csvRows(res), w)
	default:
		return validFormat(format)
	}
}

func validFormat(format string) error {
	if format != formatJSON && format != formatCSV {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatCSV)
	}
	return nil
}
