package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAppError_StatusClass(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{400, "fail"},
		{401, "fail"},
		{404, "fail"},
		{429, "fail"},
		{500, "error"},
		{502, "error"},
	}
	for _, tc := range cases {
		if got := NewAppError("x", tc.code).Status(); got != tc.want {
			t.Fatalf("Status() for %d = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("driver timeout")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be traversable")
	}
	if err.Operational {
		t.Fatalf("Internal must not be operational")
	}
	if err.Message != "Something went very wrong!" {
		t.Fatalf("unexpected message: %q", err.Message)
	}
}

func TestBadRequest_Formats(t *testing.T) {
	err := BadRequest("Invalid %s: %s.", "_id", "zzz")
	if err.Message != "Invalid _id: zzz." {
		t.Fatalf("unexpected message: %q", err.Message)
	}
	if !err.Operational || err.Code != 400 {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestChangedPasswordAfter(t *testing.T) {
	now := time.Now()

	u := &User{}
	if u.ChangedPasswordAfter(now) {
		t.Fatalf("zero change time must never be stale")
	}

	u.PasswordChangedAt = now.Add(time.Minute)
	if !u.ChangedPasswordAfter(now) {
		t.Fatalf("token issued before password change must be stale")
	}
	if u.ChangedPasswordAfter(now.Add(2 * time.Minute)) {
		t.Fatalf("token issued after password change must stay valid")
	}
}
