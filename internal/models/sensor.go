package models

import "time"

// SensorProfile describes how a reading type is presented.
type SensorProfile struct {
	Type             ReadingType `json:"type"`
	Name             string      `json:"name"`
	Unit             string      `json:"unit"`
	Icon             string      `json:"icon"`
	DeviceClass      string      `json:"device_class"`
	Precision        int         `json:"precision"`
	ConversionFactor float64     `json:"conversion_factor"`
}

// CostProfile presents pence readings as pounds.
var CostProfile = SensorProfile{
	Type:             ReadingCost,
	Name:             "Electricity Cost",
	Unit:             "GBP",
	Icon:             "mdi:currency-gbp",
	DeviceClass:      "monetary",
	Precision:        2,
	ConversionFactor: 0.01,
}

// EnergyProfile presents kWh readings unchanged.
var EnergyProfile = SensorProfile{
	Type:             ReadingEnergy,
	Name:             "Electricity Usage",
	Unit:             "kWh",
	Icon:             "mdi:lightning-bolt",
	DeviceClass:      "energy",
	Precision:        3,
	ConversionFactor: 1,
}

// ProfileFor returns the presentation profile of a reading type.
func ProfileFor(t ReadingType) SensorProfile {
	if t == ReadingCost {
		return CostProfile
	}
	return EnergyProfile
}

// Convert applies the unit conversion and rounds to the profile precision.
func (p SensorProfile) Convert(v float64) float64 {
	return Round(v*p.ConversionFactor, p.Precision)
}

// RollingTotals are the period sums derived from a reading history.
type RollingTotals struct {
	TodayLabel string  `json:"today_date"`
	WeekLabel  string  `json:"current_week"`
	MonthLabel string  `json:"current_month"`
	TotalToday float64 `json:"total_today"`
	TotalWeek  float64 `json:"total_7d"`
	TotalMonth float64 `json:"total_month"`
}

// Scaled returns a copy with every total converted by the profile.
func (t RollingTotals) Scaled(p SensorProfile) RollingTotals {
	t.TotalToday = p.Convert(t.TotalToday)
	t.TotalWeek = p.Convert(t.TotalWeek)
	t.TotalMonth = p.Convert(t.TotalMonth)
	return t
}

// PeriodHalfHourly is the bucket length label exposed as a sensor attribute.
const PeriodHalfHourly = "half-hourly"

// SensorState is what the presentation layer exposes for one sensor.
type SensorState struct {
	LastUpdated     time.Time     `json:"last_updated"`
	NativeValue     *float64      `json:"native_value"`
	Profile         SensorProfile `json:"profile"`
	LastReadingTime string        `json:"last_reading_time,omitempty"`
	Period          string        `json:"period"`
	LastError       string        `json:"last_error,omitempty"`
	Totals          RollingTotals `json:"totals"`
	Available       bool          `json:"available"`
}

// HasValue reports whether the sensor has produced a value yet.
func (s SensorState) HasValue() bool {
	return s.NativeValue != nil
}
