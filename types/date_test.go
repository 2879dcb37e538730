package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-10")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if d.String() != "2025-06-10" {
		t.Fatalf("unexpected date: %q", d.String())
	}

	if _, err := ParseDate("10/06/2025"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
}

func TestDateOfTruncatesTime(t *testing.T) {
	instant := time.Date(2025, time.June, 10, 23, 59, 59, 0, time.UTC)
	d := DateOf(instant)
	if !d.Equal(NewDate(2025, time.June, 10)) {
		t.Fatalf("expected 2025-06-10, got %s", d)
	}
	if !d.Time().Equal(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected UTC midnight, got %v", d.Time())
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.June, 10)

	if got := d.AddDays(2); !got.Equal(NewDate(2025, time.June, 12)) {
		t.Fatalf("AddDays(2) = %s", got)
	}
	if got := d.AddDays(-1); !got.Equal(NewDate(2025, time.June, 9)) {
		t.Fatalf("AddDays(-1) = %s", got)
	}
	if got := d.DaysUntil(NewDate(2025, time.June, 15)); got != 5 {
		t.Fatalf("DaysUntil = %d, want 5", got)
	}
	if got := d.DaysUntil(NewDate(2025, time.June, 8)); got != -2 {
		t.Fatalf("DaysUntil = %d, want -2", got)
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) {
		t.Fatalf("ordering broken around %s", d)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.June, 10)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-06-10"` {
		t.Fatalf("unexpected JSON: %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %s", back)
	}

	var zero Date
	data, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("zero date should encode as null, got %s", data)
	}

	var fromNull Date
	if err := json.Unmarshal([]byte("null"), &fromNull); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !fromNull.IsZero() {
		t.Fatalf("null should decode to zero date")
	}
}

func TestDateScan(t *testing.T) {
	want := NewDate(2025, time.June, 10)

	var d Date
	if err := d.Scan(time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if !d.Equal(want) {
		t.Fatalf("scan time = %s", d)
	}

	if err := d.Scan([]byte("2025-06-10")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if !d.Equal(want) {
		t.Fatalf("scan bytes = %s", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("scan nil should zero the date")
	}

	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
}

func TestDateAsMapKey(t *testing.T) {
	seen := map[Date]bool{}
	seen[NewDate(2025, time.June, 10)] = true
	if !seen[DateOf(time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC))] {
		t.Fatalf("equivalent dates should collide as map keys")
	}
}
