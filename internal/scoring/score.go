package scoring

import (
	"math"
	"time"
)

// Inputs are the six independent signals behind the Patient Health Score.
// A nil field means the signal is unknown and scores at its documented
// baseline instead of zero.
type Inputs struct {
	PatientAgeYears         *float64
	DeviceAgeYears          *float64
	AppointmentsCreated24M  *int
	LastCompletedApptMillis *int64
	ThirdPartyBenefitAmount *float64
	AccountValue            *float64
}

// Component is one scored signal with its weighted contribution.
type Component struct {
	Name         string  `json:"name"`
	Points       float64 `json:"points"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Result is a 0-100 health score with the per-component breakdown.
type Result struct {
	Total      float64     `json:"total"`
	Components []Component `json:"components"`
}

// Component weights. They sum to 100; downstream UI buckets (high-value >= 70,
// at-risk < 45) depend on the exact scale, so changing any threshold or weight
// here changes patient prioritization everywhere.
const (
	weightAge          = 15.0
	weightDeviceAge    = 25.0
	weightAppointments = 15.0
	weightRecency      = 15.0
	weightBenefit      = 10.0
	weightAccountValue = 20.0
)

// Score computes the Patient Health Score. It is deterministic: the only
// time dependence is the recency signal, which is measured against now.
func Score(in Inputs, now time.Time) Result {
	components := []Component{
		component("age", agePoints(in.PatientAgeYears), weightAge),
		component("deviceAge", deviceAgePoints(in.DeviceAgeYears), weightDeviceAge),
		component("appointments", appointmentPoints(in.AppointmentsCreated24M), weightAppointments),
		component("recency", recencyPoints(in.LastCompletedApptMillis, now), weightRecency),
		component("benefit", benefitPoints(in.ThirdPartyBenefitAmount), weightBenefit),
		component("accountValue", accountValuePoints(in.AccountValue), weightAccountValue),
	}

	var total float64
	for _, c := range components {
		total += c.Contribution
	}
	return Result{Total: round2(total), Components: components}
}

func component(name string, points, weight float64) Component {
	points = clamp(points, 0, 100)
	return Component{
		Name:         name,
		Points:       points,
		Weight:       weight,
		Contribution: round2(points * weight / 100),
	}
}

func agePoints(age *float64) float64 {
	switch {
	case age == nil:
		return 50
	case *age < 80:
		return 100
	case *age < 90:
		return 80
	default:
		return 50
	}
}

func deviceAgePoints(years *float64) float64 {
	switch {
	case years == nil:
		return 50
	case *years <= 1:
		return 10
	case *years <= 3:
		return 50
	case *years <= 5:
		return 90
	default:
		return 100
	}
}

func appointmentPoints(count *int) float64 {
	switch {
	case count == nil:
		return 40
	case *count <= 0:
		return 20
	case *count == 1:
		return 60
	case *count <= 3:
		return 90
	default:
		return 100
	}
}

func recencyPoints(lastCompletedMillis *int64, now time.Time) float64 {
	if lastCompletedMillis == nil {
		return 30
	}
	days := now.Sub(time.UnixMilli(*lastCompletedMillis)).Hours() / 24
	switch {
	case days <= 180:
		return 100
	case days <= 365:
		return 60
	case days <= 730:
		return 30
	default:
		return 10
	}
}

func benefitPoints(amount *float64) float64 {
	switch {
	case amount == nil:
		return 50
	case *amount >= 2000:
		return 100
	case *amount > 0:
		return 30
	default:
		return 50
	}
}

func accountValuePoints(value *float64) float64 {
	switch {
	case value == nil:
		return 40
	case *value < 1000:
		return 20
	case *value < 3000:
		return 60
	case *value < 6000:
		return 85
	default:
		return 100
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
