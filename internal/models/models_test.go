package models

import (
	"testing"
	"time"
)

func TestNotificationActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name        string
		activeUntil *time.Time
		want        bool
	}{
		{"no expiry", nil, true},
		{"future expiry", &future, true},
		{"past expiry", &past, false},
		{"expiry exactly now is inclusive", &now, true},
	}
	for _, tc := range cases {
		n := &Notification{ActiveUntil: tc.activeUntil}
		if got := n.Active(now); got != tc.want {
			t.Errorf("%s: Active = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCommentOwnable(t *testing.T) {
	c := &Comment{UserID: 12}
	if c.GetUserID() != 12 {
		t.Fatalf("GetUserID = %d, want 12", c.GetUserID())
	}
}
