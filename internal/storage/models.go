package storage

import "database/sql"

type Category struct {
	ID          int64
	Name        string
	Description string
}

type Transaction struct {
	ID          int64
	Description string
	AmountCents int64
	Date        string
	Kind        string
	CategoryID  sql.NullInt64
}

type BalanceHistory struct {
	ID           int64
	Date         string
	IncomeCents  int64
	ExpenseCents int64
	BalanceCents int64
}
