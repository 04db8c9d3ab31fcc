package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestReadingType_String(t *testing.T) {
	tests := []struct {
		rt   ReadingType
		want string
	}{
		{ReadingCost, "cost"},
		{ReadingEnergy, "energy"},
		{ReadingType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.rt.String(); got != tt.want {
			t.Errorf("ReadingType(%d).String() = %q, want %q", tt.rt, got, tt.want)
		}
	}
}

func TestParseReadingType(t *testing.T) {
	tests := []struct {
		in      string
		want    ReadingType
		wantErr bool
	}{
		{"cost", ReadingCost, false},
		{"Energy", ReadingEnergy, false},
		{" energy ", ReadingEnergy, false},
		{"water", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReadingType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReadingType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseReadingType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWindowParams(t *testing.T) {
	w := Window{
		From: time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 13, 9, 59, 59, 0, time.UTC),
	}

	if got := w.FromParam(); got != "2024-03-13T09:30:00" {
		t.Errorf("FromParam() = %q", got)
	}
	if got := w.ToParam(); got != "2024-03-13T09:59:59" {
		t.Errorf("ToParam() = %q", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.23456, 2, 1.23},
		{1.23456, 3, 1.235},
		{0.1 + 0.2, 3, 0.3},
		{17.5, 0, 18},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestSensorProfile_Convert(t *testing.T) {
	if got := CostProfile.Convert(1234); got != 12.34 {
		t.Errorf("CostProfile.Convert(1234) = %v, want 12.34", got)
	}
	if got := EnergyProfile.Convert(0.12345); got != 0.123 {
		t.Errorf("EnergyProfile.Convert(0.12345) = %v, want 0.123", got)
	}
}

func TestRollingTotals_Scaled(t *testing.T) {
	totals := RollingTotals{
		TodayLabel: "2024-03-13",
		TotalToday: 150,
		TotalWeek:  1000,
		TotalMonth: 4321,
	}

	got := totals.Scaled(CostProfile)
	if got.TotalToday != 1.5 || got.TotalWeek != 10 || got.TotalMonth != 43.21 {
		t.Errorf("Scaled() = %+v", got)
	}
	if got.TodayLabel != "2024-03-13" {
		t.Errorf("Scaled() dropped label: %q", got.TodayLabel)
	}
	if totals.TotalToday != 150 {
		t.Error("Scaled() mutated the receiver")
	}
}

func TestProfileFor(t *testing.T) {
	if ProfileFor(ReadingCost).Unit != "GBP" {
		t.Error("cost profile should use GBP")
	}
	if ProfileFor(ReadingEnergy).Unit != "kWh" {
		t.Error("energy profile should use kWh")
	}
}

func TestReadingType_TextRoundTrip(t *testing.T) {
	b, err := json.Marshal(map[string]ReadingType{"type": ReadingEnergy})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"type":"energy"}` {
		t.Errorf("Marshal() = %s", b)
	}

	var decoded struct {
		Type ReadingType `json:"type"`
	}
	if err := json.Unmarshal([]byte(`{"type":"cost"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Type != ReadingCost {
		t.Errorf("Unmarshal() = %v, want cost", decoded.Type)
	}
	if err := json.Unmarshal([]byte(`{"type":"gas"}`), &decoded); err == nil {
		t.Error("Unmarshal() accepted unknown type")
	}
}
