package core

import (
	"testing"
	"time"
)

func TestSummarizeBudget(t *testing.T) {
	// A: last unit price 100, qty 1; B: session total 250, qty 2.
	// points 200 -> limit 300, spent 350, remaining -50.
	d := Document{
		Inventory: []Item{
			{ID: "a", Name: "A", Cat: "c", ToBuy: true, LastPrice: 100, Quantity: 1},
			{ID: "b", Name: "B", Cat: "c", ToBuy: true, CurrentPrice: ptr(250), Quantity: 2},
			{ID: "x", Name: "X", Cat: "c", LastPrice: 999, Quantity: 1},
		},
		Categories: []string{"c"},
		Points:     200,
		LastMonth:  1,
	}

	s := d.Summarize(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	if s.Limit != 300 {
		t.Fatalf("limit = %d, want 300", s.Limit)
	}
	if s.TotalSpent != 350 {
		t.Fatalf("total spent = %d, want 350", s.TotalSpent)
	}
	if s.Remaining != -50 {
		t.Fatalf("remaining = %d, want -50", s.Remaining)
	}
	if s.BuyCount != 2 {
		t.Fatalf("buy count = %d, want 2", s.BuyCount)
	}
	if s.DaysToPointsDay != 10 {
		t.Fatalf("days to points day = %d, want 10", s.DaysToPointsDay)
	}
}

func TestLimitFloorsOddPoints(t *testing.T) {
	cases := []struct {
		points int64
		limit  int64
	}{
		{0, 0},
		{1, 1},   // floor(1.5)
		{3, 4},   // floor(4.5)
		{200, 300},
		{333, 499},
	}
	for _, tc := range cases {
		d := Document{Points: tc.points}
		if got := d.Limit(); got != tc.limit {
			t.Fatalf("points=%d limit=%d, want %d", tc.points, got, tc.limit)
		}
	}
}

func TestDaysToPointsDay(t *testing.T) {
	cases := []struct {
		day  int
		want int
	}{
		{1, 19},
		{19, 1},
		{20, 0},
		{21, 0},
		{28, 0},
	}
	for _, tc := range cases {
		now := time.Date(2025, 6, tc.day, 12, 0, 0, 0, time.UTC)
		if got := DaysToPointsDay(now); got != tc.want {
			t.Fatalf("day %d: got %d, want %d", tc.day, got, tc.want)
		}
	}
}
