package core

import (
	"math"
	"testing"
)

func TestUtilization(t *testing.T) {
	card := Card{ID: "a", Limit: 1000}
	cases := []struct {
		name    string
		entry   *Entry
		card    *Card
		balance float64
		want    float64
	}{
		{"no entry", nil, &card, 0, 0},
		{"no card", &Entry{CurrentBalance: 500}, nil, 0, 0},
		{"zero limit", &Entry{CurrentBalance: 500}, &Card{Limit: 0}, 0, 0},
		{"half", &Entry{CurrentBalance: 500}, &card, 0, 50},
		{"credit balance", &Entry{CurrentBalance: -50}, &card, 0, 0},
		{"over limit", &Entry{CurrentBalance: 1500}, &card, 0, 150},
		{"capped", &Entry{CurrentBalance: 1e6}, &card, 0, 999.9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Utilization(tc.entry, tc.card); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUtilizationProperty(t *testing.T) {
	for _, limit := range []float64{1, 250, 1000, 12345.67} {
		for _, bal := range []float64{0, 0.01, 99, 1000, 50000, 1e7} {
			c := Card{Limit: limit}
			e := Entry{CurrentBalance: bal}
			want := math.Min(bal/limit*100, UtilizationCeiling)
			if got := Utilization(&e, &c); got != want {
				t.Fatalf("limit %v balance %v: got %v want %v", limit, bal, got, want)
			}
		}
	}
}

func TestEstimatedInterest(t *testing.T) {
	card := Card{APR: 19.99}
	zeroCases := []struct {
		e *Entry
		c *Card
	}{
		{nil, &card},
		{&Entry{CurrentBalance: 1000}, nil},
		{&Entry{CurrentBalance: 1000}, &Card{APR: 0}},
		{&Entry{CurrentBalance: 1000}, &Card{APR: -3}},
		{&Entry{CurrentBalance: 0}, &card},
		{&Entry{CurrentBalance: -200}, &card},
	}
	for i, tc := range zeroCases {
		if got := EstimatedInterest(tc.e, tc.c); got != 0 {
			t.Fatalf("case %d: got %v, want 0", i, got)
		}
	}

	got := EstimatedInterest(&Entry{CurrentBalance: 1000}, &card)
	want := 1000 * (math.Pow(1+0.1999/365, 30.44) - 1)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got < 16.8 || got > 16.81 {
		t.Fatalf("interest %v outside expected 16.80..16.81", got)
	}
}

func TestDaysTill(t *testing.T) {
	e := Entry{StatementEnd: strPtr("2024-01-20"), DueDate: strPtr("2024-02-03")}
	if d, ok := DaysTillClose(&e, "2024-01-15"); !ok || d != 5 {
		t.Fatalf("close = %d %v", d, ok)
	}
	if d, ok := DaysTillDue(&e, "2024-01-15"); !ok || d != 19 {
		t.Fatalf("due = %d %v", d, ok)
	}
	if d, ok := DaysTillDue(&e, "2024-02-05"); !ok || d != -2 {
		t.Fatalf("overdue = %d %v", d, ok)
	}
	if _, ok := DaysTillDue(&Entry{}, "2024-01-15"); ok {
		t.Fatal("missing due date should be unavailable")
	}
	if _, ok := DaysTillClose(nil, "2024-01-15"); ok {
		t.Fatal("missing entry should be unavailable")
	}
}

func TestMetricsFor(t *testing.T) {
	c := Card{ID: "a", Limit: 1000, APR: 20, UtilTarget: 30}
	e := Entry{CardID: "a", CurrentBalance: 800, DueDate: strPtr("2024-01-25")}

	m := MetricsFor(c, &e, "2024-01-15")
	if !m.HasEntry || m.Utilization != 80 || !m.OverTarget {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if m.DaysTillDue == nil || *m.DaysTillDue != 10 {
		t.Fatalf("daysTillDue = %v", m.DaysTillDue)
	}
	if m.DaysTillClose != nil {
		t.Fatalf("daysTillClose should be nil, got %d", *m.DaysTillClose)
	}
	if m.EstimatedInterest <= 0 {
		t.Fatalf("expected positive interest, got %v", m.EstimatedInterest)
	}

	empty := MetricsFor(c, nil, "2024-01-15")
	if empty.HasEntry || empty.OverTarget || empty.Utilization != 0 || empty.DaysTillDue != nil {
		t.Fatalf("unexpected metrics without entry %+v", empty)
	}
}
