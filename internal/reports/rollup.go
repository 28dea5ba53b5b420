package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// PeriodCount is one bucket of an appointment rollup.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// PeriodRevenue is one bucket of a revenue rollup.
type PeriodRevenue struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

// StatusCount is one step of the recall funnel.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Period selects the rollup granularity.
type Period string

const (
	PeriodWeekly    Period = "weekly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ParsePeriod validates a period query parameter.
func ParsePeriod(s string) (Period, bool) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeekly:
		return PeriodWeekly, true
	case PeriodQuarterly:
		return PeriodQuarterly, true
	case PeriodYearly:
		return PeriodYearly, true
	}
	return "", false
}

var (
	apptDateColumns     = []string{"Appt. date", "Appointment date", "Date"}
	saleDateColumns     = []string{"Date", "Sale date", "Transaction date", "Invoice date"}
	saleAmountColumns   = []string{"Amount", "Revenue", "Total", "Net amount"}
	recallStatusColumns = []string{"Status", "Recall status", "Recall Status"}
)

// AppointmentsByPeriod counts appointment rows per bucket of the appointment
// date. Rows whose date cell cannot be parsed are skipped.
func AppointmentsByPeriod(rows []omsdata.RowData, period Period) []PeriodCount {
	counts := make(map[string]int)
	for _, row := range rows {
		raw, ok := row.FirstNonEmpty(apptDateColumns...)
		if !ok {
			continue
		}
		date, ok := omsdata.ParseDate(raw)
		if !ok {
			continue
		}
		counts[bucket(date, period)]++
	}

	out := make([]PeriodCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PeriodCount{Period: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// RevenueByPeriod sums sale amounts per bucket of the sale date.
func RevenueByPeriod(rows []omsdata.RowData, period Period) []PeriodRevenue {
	totals := make(map[string]float64)
	for _, row := range rows {
		rawDate, ok := row.FirstNonEmpty(saleDateColumns...)
		if !ok {
			continue
		}
		date, ok := omsdata.ParseDate(rawDate)
		if !ok {
			continue
		}
		rawAmount, ok := row.FirstNonEmpty(saleAmountColumns...)
		if !ok {
			continue
		}
		amount, ok := omsdata.ParseCurrency(rawAmount)
		if !ok {
			continue
		}
		totals[bucket(date, period)] += amount
	}

	out := make([]PeriodRevenue, 0, len(totals))
	for p, r := range totals {
		out = append(out, PeriodRevenue{Period: p, Revenue: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// RecallFunnel counts recall rows by status. Rows without a status column
// land in the "unknown" step so the funnel total matches the row count.
func RecallFunnel(rows []omsdata.RowData) []StatusCount {
	counts := make(map[string]int)
	for _, row := range rows {
		status, ok := row.FirstNonEmpty(recallStatusColumns...)
		if !ok {
			status = "unknown"
		}
		counts[strings.ToLower(status)]++
	}

	out := make([]StatusCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, StatusCount{Status: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

func bucket(date time.Time, period Period) string {
	switch period {
	case PeriodWeekly:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodQuarterly:
		quarter := (int(date.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", date.Year(), quarter)
	default:
		return fmt.Sprintf("%04d", date.Year())
	}
}
