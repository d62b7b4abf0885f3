package models

import "testing"

func TestGetUserID(t *testing.T) {
	if got := (&Client{UserID: "u1"}).GetUserID(); got != "u1" {
		t.Errorf("Client.GetUserID() = %q", got)
	}
	if got := (&Task{UserID: "u2"}).GetUserID(); got != "u2" {
		t.Errorf("Task.GetUserID() = %q", got)
	}
	if got := (&Profile{ID: "u3"}).GetUserID(); got != "u3" {
		t.Errorf("Profile.GetUserID() = %q", got)
	}
}

func TestStatuses(t *testing.T) {
	if !ClientActive.Valid() || !ClientInactive.Valid() || ClientStatus("archived").Valid() {
		t.Error("unexpected ClientStatus.Valid results")
	}
	tests := []struct {
		status TaskStatus
		valid  bool
		open   bool
	}{
		{TaskPending, true, true},
		{TaskInProgress, true, true},
		{TaskCompleted, true, false},
		{TaskStatus("done"), false, false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.valid {
			t.Errorf("%s.Valid() = %v", tt.status, got)
		}
		if got := tt.status.Open(); got != tt.open {
			t.Errorf("%s.Open() = %v", tt.status, got)
		}
	}
}

func TestBeforeCreateAssignsID(t *testing.T) {
	c := &Client{}
	if err := c.BeforeCreate(nil); err != nil || len(c.ID) != 36 {
		t.Fatalf("client id %q, err %v", c.ID, err)
	}
	keep := &Task{ID: "fixed"}
	_ = keep.BeforeCreate(nil)
	if keep.ID != "fixed" {
		t.Errorf("existing id overwritten: %q", keep.ID)
	}
}

func TestDisplayName(t *testing.T) {
	name := "Jane Doe"
	if got := (&Profile{FullName: &name}).DisplayName("jane@x.io"); got != name {
		t.Errorf("DisplayName = %q", got)
	}
	var nilProfile *Profile
	if got := nilProfile.DisplayName("jane@x.io"); got != "jane@x.io" {
		t.Errorf("nil DisplayName = %q", got)
	}
}
