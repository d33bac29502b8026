package timeparse

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{"plain clock", "08:00", 8 * 60, true},
		{"clock with seconds", "14:30:00", 14*60 + 30, true},
		{"12 hour", "2:15 PM", 14*60 + 15, true},
		{"unpadded", "9:05", 9*60 + 5, true},
		{"time.Time", time.Date(2025, 3, 6, 11, 45, 0, 0, time.UTC), 11*60 + 45, true},
		{"datetime string", "2025-03-06 16:00:00", 16 * 60, true},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"garbage", "%%%%", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Clock(tt.value)
			if ok != tt.ok {
				t.Fatalf("Clock(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Clock(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestStamp(t *testing.T) {
	got, ok := Stamp("2025-04-01 12:00:00")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Stamp = %v, want %v", got, want)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
		ok    bool
	}{
		{"go duration", "1h30m", 90 * time.Minute, true},
		{"colon hours minutes", "1:30", 90 * time.Minute, true},
		{"colon with seconds", "2:00:30", 2*time.Hour + 30*time.Second, true},
		{"numeric hours string", "1.5", 90 * time.Minute, true},
		{"float hours", 2.0, 2 * time.Hour, true},
		{"int hours", 3, 3 * time.Hour, true},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"garbage", "soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Duration(tt.value)
			if ok != tt.ok {
				t.Fatalf("Duration(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Duration(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestMinutesToClock(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{480, "08:00"},
		{1125, "18:45"},
		{-10, "00:00"},
		{24 * 60, "23:59"},
	}

	for _, tt := range tests {
		if got := MinutesToClock(tt.minutes); got != tt.want {
			t.Errorf("MinutesToClock(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
