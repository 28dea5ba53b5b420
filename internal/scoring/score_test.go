package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func mptr(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

func TestScoreAllMissingBaseline(t *testing.T) {
	result := Score(Inputs{}, scoreNow)

	// 50*0.15 + 50*0.25 + 40*0.15 + 30*0.15 + 50*0.10 + 40*0.20
	assert.Equal(t, 43.5, result.Total)
	require.Len(t, result.Components, 6)

	byName := map[string]Component{}
	for _, c := range result.Components {
		byName[c.Name] = c
	}
	assert.Equal(t, 50.0, byName["age"].Points)
	assert.Equal(t, 50.0, byName["deviceAge"].Points)
	assert.Equal(t, 40.0, byName["appointments"].Points)
	assert.Equal(t, 30.0, byName["recency"].Points)
	assert.Equal(t, 50.0, byName["benefit"].Points)
	assert.Equal(t, 40.0, byName["accountValue"].Points)
}

func TestScoreWeightsSumTo100(t *testing.T) {
	result := Score(Inputs{}, scoreNow)
	var sum float64
	for _, c := range result.Components {
		sum += c.Weight
	}
	assert.Equal(t, 100.0, sum)
}

func TestScorePerfectPatient(t *testing.T) {
	in := Inputs{
		PatientAgeYears:         fptr(72),
		DeviceAgeYears:          fptr(6),
		AppointmentsCreated24M:  iptr(5),
		LastCompletedApptMillis: mptr(scoreNow.AddDate(0, -2, 0)),
		ThirdPartyBenefitAmount: fptr(2500),
		AccountValue:            fptr(8000),
	}
	result := Score(in, scoreNow)
	assert.Equal(t, 100.0, result.Total)
}

func TestScoreAgeThresholds(t *testing.T) {
	tests := []struct {
		age  float64
		want float64
	}{
		{79.9, 100}, {80, 80}, {89.9, 80}, {90, 50}, {101, 50},
	}
	for _, tt := range tests {
		result := Score(Inputs{PatientAgeYears: fptr(tt.age)}, scoreNow)
		for _, c := range result.Components {
			if c.Name == "age" {
				assert.Equal(t, tt.want, c.Points, "age %v", tt.age)
			}
		}
	}
}

func TestScoreDeviceAgeThresholds(t *testing.T) {
	tests := []struct {
		years float64
		want  float64
	}{
		{0.5, 10}, {1, 10}, {2, 50}, {3, 50}, {4, 90}, {5, 90}, {5.1, 100},
	}
	for _, tt := range tests {
		result := Score(Inputs{DeviceAgeYears: fptr(tt.years)}, scoreNow)
		for _, c := range result.Components {
			if c.Name == "deviceAge" {
				assert.Equal(t, tt.want, c.Points, "device age %v", tt.years)
			}
		}
	}
}

func TestScoreAppointmentThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 20}, {-1, 20}, {1, 60}, {2, 90}, {3, 90}, {4, 100},
	}
	for _, tt := range tests {
		result := Score(Inputs{AppointmentsCreated24M: iptr(tt.count)}, scoreNow)
		for _, c := range result.Components {
			if c.Name == "appointments" {
				assert.Equal(t, tt.want, c.Points, "count %d", tt.count)
			}
		}
	}
}

func TestScoreRecencyThresholds(t *testing.T) {
	tests := []struct {
		daysAgo int
		want    float64
	}{
		{30, 100}, {180, 100}, {200, 60}, {365, 60}, {400, 30}, {730, 30}, {800, 10},
	}
	for _, tt := range tests {
		last := scoreNow.AddDate(0, 0, -tt.daysAgo)
		result := Score(Inputs{LastCompletedApptMillis: mptr(last)}, scoreNow)
		for _, c := range result.Components {
			if c.Name == "recency" {
				assert.Equal(t, tt.want, c.Points, "%d days ago", tt.daysAgo)
			}
		}
	}
}

func TestScoreBenefitThresholds(t *testing.T) {
	tests := []struct {
		amount float64
		want   float64
	}{
		{2000, 100}, {5000, 100}, {1999, 30}, {1, 30}, {0, 50},
	}
	for _, tt := range tests {
		result := Score(Inputs{ThirdPartyBenefitAmount: fptr(tt.amount)}, scoreNow)
		for _, c := range result.Components {
			if c.Name == "benefit" {
				assert.Equal(t, tt.want, c.Points, "amount %v", tt.amount)
			}
		}
	}
}

func TestScoreAccountValueThresholds(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{500, 20}, {999, 20}, {1000, 60}, {2999, 60}, {3000, 85}, {5999, 85}, {6000, 100},
	}
	for _, tt := range tests {
		result := Score(Inputs{AccountValue: fptr(tt.value)}, scoreNow)
		for _, c := range result.Components {
			if c.Name == "accountValue" {
				assert.Equal(t, tt.want, c.Points, "value %v", tt.value)
			}
		}
	}
}

func TestScoreMonotonicInAccountValue(t *testing.T) {
	base := Inputs{
		PatientAgeYears:        fptr(70),
		AppointmentsCreated24M: iptr(2),
		AccountValue:           fptr(500),
	}
	low := Score(base, scoreNow)

	base.AccountValue = fptr(7000)
	high := Score(base, scoreNow)

	assert.Greater(t, high.Total, low.Total)
}

func TestScoreDeterministic(t *testing.T) {
	in := Inputs{PatientAgeYears: fptr(85), AccountValue: fptr(2000)}
	a := Score(in, scoreNow)
	b := Score(in, scoreNow)
	assert.Equal(t, a, b)
}
