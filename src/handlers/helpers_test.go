package handlers

import (
	"strconv"

	"github.com/shopspring/decimal"
)

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
