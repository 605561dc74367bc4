package ledger

import (
	"math"

	"timeledger/models"
)

// Daily threshold policy, applied per entry at settlement: the first
// 8 hours pay at the base rate, hours 8-12 at 1.5x, anything beyond 12
// at 2x. All duration math stays in whole minutes; hours are rounded to
// hundredths only at the boundary, money to the cent with round-half-up.
const (
	regularLimitMinutes  = 8 * 60
	overtimeLimitMinutes = 12 * 60

	overtimeMultiplier   = 1.5
	doubleTimeMultiplier = 2.0

	// Tolerance for the bucket sum invariant, in hours.
	TotalsEpsilon = 0.01
)

type PaySplit struct {
	RegularHours    float64
	OvertimeHours   float64
	DoubleTimeHours float64
	TotalHours      float64
	RegularPay      float64
	OvertimePay     float64
	DoubleTimePay   float64
	TotalPay        float64
}

type PaySplitter struct{}

func NewPaySplitter() *PaySplitter {
	return &PaySplitter{}
}

// Split buckets net worked minutes under the daily policy and prices
// each bucket at the given base rate.
func (p *PaySplitter) Split(totalMinutes int, rate float64) PaySplit {
	if totalMinutes < 0 {
		totalMinutes = 0
	}

	regularMin := totalMinutes
	if regularMin > regularLimitMinutes {
		regularMin = regularLimitMinutes
	}
	overtimeMin := 0
	if totalMinutes > regularLimitMinutes {
		overtimeMin = totalMinutes - regularLimitMinutes
		if overtimeMin > overtimeLimitMinutes-regularLimitMinutes {
			overtimeMin = overtimeLimitMinutes - regularLimitMinutes
		}
	}
	doubleMin := 0
	if totalMinutes > overtimeLimitMinutes {
		doubleMin = totalMinutes - overtimeLimitMinutes
	}

	split := PaySplit{
		RegularHours:    MinutesToHours(regularMin),
		OvertimeHours:   MinutesToHours(overtimeMin),
		DoubleTimeHours: MinutesToHours(doubleMin),
		TotalHours:      MinutesToHours(totalMinutes),
	}
	split.RegularPay = RoundCents(split.RegularHours * rate)
	split.OvertimePay = RoundCents(split.OvertimeHours * rate * overtimeMultiplier)
	split.DoubleTimePay = RoundCents(split.DoubleTimeHours * rate * doubleTimeMultiplier)
	split.TotalPay = RoundCents(split.RegularPay + split.OvertimePay + split.DoubleTimePay)
	return split
}

// CheckTotals verifies the settled bucket sum invariant on an entry.
// A failure indicates a splitter defect and must block approval.
func (p *PaySplitter) CheckTotals(e *models.TimeEntry) error {
	sum := e.RegularHours + e.OvertimeHours + e.DoubleTimeHours
	if math.Abs(sum-e.TotalHours) > TotalsEpsilon {
		return ErrInconsistentTotals
	}
	return nil
}

// MinutesToHours converts whole minutes to hours rounded to hundredths.
func MinutesToHours(minutes int) float64 {
	return math.Round(float64(minutes)/60.0*100) / 100
}

// RoundCents rounds a money value to the cent, half-up.
func RoundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
