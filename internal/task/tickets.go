package task

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

const (
	ticketDBFile    = "ticket-sales.db"
	ticketSalesFile = "ticket-sales-gold.txt"
)

func opTicketSales() *Operation {
	return &Operation{
		ID:     "ticket-sales",
		Intent: "total the Gold ticket sales from the ticket database",
		Patterns: [][]string{
			{"ticket", "sales"},
			{"gold", "ticket"},
		},
		Run: runTicketSales,
	}
}

func runTicketSales(ctx context.Context, env Env, description string) (Result, error) {
	dbPath, err := env.Sandbox.Resolve(ticketDBFile)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ticketDBFile, err)
	}
	defer db.Close()

	// SUM over zero matching rows is NULL; report it as 0 rather than
	// failing the scan.
	var total sql.NullFloat64
	err = db.QueryRowContext(ctx,
		`SELECT SUM(units * price) FROM tickets WHERE type = 'Gold'`,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("query ticket sales: %w", err)
	}

	sum := 0.0
	if total.Valid {
		sum = total.Float64
	}

	out := strconv.FormatFloat(sum, 'f', -1, 64)
	if err := env.Sandbox.WriteFile(ticketSalesFile, []byte(out)); err != nil {
		return nil, fmt.Errorf("write %s: %w", ticketSalesFile, err)
	}

	return Result{"total_sales": sum}, nil
}
