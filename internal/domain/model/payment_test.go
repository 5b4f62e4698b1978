package model

import (
	"reflect"
	"testing"
)

func TestConfirmationCompleted(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"COMPLETED", true},
		{"completed", true},
		{" Completed ", true},
		{"APPROVED", false},
		{"CREATED", false},
		{"", false},
	}
	for _, tc := range cases {
		conf := PaymentConfirmation{Status: tc.status}
		if got := conf.Completed(); got != tc.want {
			t.Fatalf("Completed() with %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestOrderIDsCSV(t *testing.T) {
	if got := JoinOrderIDs([]int64{3, 1, 12}); got != "3,1,12" {
		t.Fatalf("unexpected csv: %q", got)
	}
	if got := JoinOrderIDs(nil); got != "" {
		t.Fatalf("expected empty csv, got %q", got)
	}

	got := SplitOrderIDs("3, 1,,abc,-5,12")
	want := []int64{3, 1, 12}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitOrderIDs = %v, want %v", got, want)
	}
	if ids := SplitOrderIDs(""); ids != nil {
		t.Fatalf("expected nil for empty csv, got %v", ids)
	}
}
