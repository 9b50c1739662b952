package utils

import (
	"log"
	"time"
)

const TradingDayLayout = "20060102"

// TimeNowCST returns the current time in the China Standard Time zone the
// exchanges publish data in.
func TimeNowCST() time.Time {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return time.Now().In(loc)
}

// TradingDay formats a time as the YYYYMMDD key used for cache generations
// and daily tables.
func TradingDay(t time.Time) string {
	return t.Format(TradingDayLayout)
}

// TradingDayToday returns today's trading-day key in CST.
func TradingDayToday() string {
	return TradingDay(TimeNowCST())
}

// FormatTradingDay renders a YYYYMMDD key as YYYY-MM-DD for display.
func FormatTradingDay(day string) string {
	if len(day) != 8 {
		return day
	}
	return day[:4] + "-" + day[4:6] + "-" + day[6:8]
}

// ToPointer returns a pointer to the given value.
func ToPointer[T any](v T) *T {
	return &v
}
