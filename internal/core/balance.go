package core

// BalanceRecord is the derived aggregate for one calendar day.
//
// Income and Expense are the day's totals. Balance is the running total of
// all income minus all expense up to and including Date.
type BalanceRecord struct {
	Date    Date
	Income  Money
	Expense Money
	Balance Money
}

// Net returns the day's income minus expense.
func (r BalanceRecord) Net() Money {
	return r.Income.Sub(r.Expense)
}

// Latest returns the record with the greatest date, or the zero record when
// records is empty. records does not need to be sorted.
func Latest(records []BalanceRecord) BalanceRecord {
	var latest BalanceRecord
	for i, r := range records {
		if i == 0 || latest.Date.Before(r.Date) {
			latest = r
		}
	}
	return latest
}
