package lab

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		wantErr  error
	}{
		{StatusPending, StatusSamplesCollected, nil},
		{StatusPending, StatusProcessing, nil},
		{StatusPending, StatusCompleted, nil},
		{StatusPending, StatusCancelled, nil},
		{StatusSamplesCollected, StatusProcessing, nil},
		{StatusSamplesCollected, StatusCompleted, nil},
		{StatusSamplesCollected, StatusCancelled, nil},
		{StatusProcessing, StatusCompleted, nil},
		{StatusProcessing, StatusCancelled, nil},

		{StatusProcessing, StatusPending, ErrIllegalTransition},
		{StatusProcessing, StatusSamplesCollected, ErrIllegalTransition},
		{StatusSamplesCollected, StatusPending, ErrIllegalTransition},
		{StatusPending, StatusPending, ErrIllegalTransition},

		{StatusCompleted, StatusProcessing, ErrOrderAlreadyFinalized},
		{StatusCompleted, StatusCompleted, ErrOrderAlreadyFinalized},
		{StatusCancelled, StatusPending, ErrOrderAlreadyFinalized},
		{StatusCancelled, StatusCancelled, ErrOrderAlreadyFinalized},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if !errors.Is(err, tc.wantErr) && err != tc.wantErr {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, err, tc.wantErr)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusSamplesCollected, StatusProcessing} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusProcessing.Valid() {
		t.Error("processing should be valid")
	}
	if Status("shipped").Valid() {
		t.Error("unknown status should be invalid")
	}
	if Status("").Valid() {
		t.Error("empty status should be invalid")
	}
}
