package sales

import (
	"time"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

// saleDateLayout is the only external date representation: dd/MM/yyyy HH:mm:ss.
const saleDateLayout = "02/01/2006 15:04:05"

// ParseSaleDate converts the wire date string to a time.Time.
func ParseSaleDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(saleDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, httpx.Validation("The date provided does not comply with the format dd/MM/yyyy HH:mm:ss")
	}
	return t, nil
}

// FormatSaleDate converts a time.Time to the wire date string.
func FormatSaleDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(saleDateLayout)
}
