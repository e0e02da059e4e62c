package timeslot

import "testing"

func TestMinutes(t *testing.T) {
	tests := []struct {
		name    string
		time    string
		want    int
		wantErr error
	}{
		{name: "midnight", time: "00:00", want: 0},
		{name: "morning", time: "08:30", want: 510},
		{name: "single digit hour", time: "8:30", want: 510},
		{name: "last minute", time: "23:59", want: 1439},
		{name: "empty", time: "", wantErr: ErrInvalidTime},
		{name: "hour out of range", time: "24:00", wantErr: ErrInvalidTime},
		{name: "minute out of range", time: "10:60", wantErr: ErrInvalidTime},
		{name: "missing minutes", time: "10:", wantErr: ErrInvalidTime},
		{name: "not a time", time: "lunchtime", wantErr: ErrInvalidTime},
		{name: "trailing garbage", time: "10:00pm", wantErr: ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Minutes(tt.time)
			if err != tt.wantErr {
				t.Fatalf("Minutes(%q) error = %v, wantErr %v", tt.time, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Minutes(%q) = %d, want %d", tt.time, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           bool
	}{
		{name: "disjoint", aStart: 60, aEnd: 120, bStart: 180, bEnd: 240, want: false},
		{name: "touching endpoints", aStart: 60, aEnd: 120, bStart: 120, bEnd: 180, want: false},
		{name: "partial overlap", aStart: 60, aEnd: 130, bStart: 120, bEnd: 180, want: true},
		{name: "contained", aStart: 60, aEnd: 240, bStart: 120, bEnd: 180, want: true},
		{name: "identical", aStart: 60, aEnd: 120, bStart: 60, bEnd: 120, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// overlap is symmetric
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps() (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlaps_interval_overlaps_itself(t *testing.T) {
	if !Overlaps(510, 600, 510, 600) {
		t.Error("an interval must overlap itself")
	}
}

func TestDayName(t *testing.T) {
	if got := DayName(0); got != "Sunday" {
		t.Errorf("DayName(0) = %q, want Sunday", got)
	}
	if got := DayName(6); got != "Saturday" {
		t.Errorf("DayName(6) = %q, want Saturday", got)
	}
	if got := DayName(7); got != "day 7" {
		t.Errorf("DayName(7) = %q, want 'day 7'", got)
	}
}
