package pipeline

import (
	"errors"
	"testing"
)

func TestExtractProfile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  string
		wantErr bool
	}{
		{
			name:   "top-level parsed_profile",
			body:   `{"parsed_profile": {"id": "U-001", "city": "Lahore"}}`,
			wantID: "U-001",
		},
		{
			name:   "nested result.parsed_profile",
			body:   `{"result": {"parsed_profile": {"id": "U-002"}}}`,
			wantID: "U-002",
		},
		{
			name:   "nested result.profile",
			body:   `{"result": {"profile": {"id": "U-003"}}}`,
			wantID: "U-003",
		},
		{
			name:   "top-level profile",
			body:   `{"profile": {"id": "U-004"}}`,
			wantID: "U-004",
		},
		{
			name:   "earlier location wins over later",
			body:   `{"parsed_profile": {"id": "first"}, "profile": {"id": "last"}}`,
			wantID: "first",
		},
		{
			name:   "null location is skipped",
			body:   `{"parsed_profile": null, "profile": {"id": "U-005"}}`,
			wantID: "U-005",
		},
		{
			name:    "no profile anywhere",
			body:    `{"status": "ok", "result": {"elapsed_ms": 42}}`,
			wantErr: true,
		},
		{
			name:    "all locations null",
			body:    `{"parsed_profile": null, "result": {"profile": null}, "profile": null}`,
			wantErr: true,
		},
		{
			name:    "unparseable reply",
			body:    `not json at all`,
			wantErr: true,
		},
		{
			name:    "malformed profile object",
			body:    `{"parsed_profile": {"budget_PKR": "not-a-number"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := ExtractProfile([]byte(tt.body))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var perr *Error
				if !errors.As(err, &perr) {
					t.Errorf("expected *pipeline.Error, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if profile.ID != tt.wantID {
				t.Errorf("expected profile ID %s, got %s", tt.wantID, profile.ID)
			}
		})
	}
}

func TestExtractProfile_Fields(t *testing.T) {
	body := `{"result": {"parsed_profile": {
		"id": "U-010", "city": "Karachi", "area": "Gulshan",
		"budget_PKR": 28000, "sleep_schedule": "late", "cleanliness": "medium",
		"noise_tolerance": "high", "study_habits": "home", "food_pref": "veg",
		"notes": "allergic to cats"
	}}}`

	profile, err := ExtractProfile([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.City != "Karachi" {
		t.Errorf("expected city Karachi, got %s", profile.City)
	}
	if profile.BudgetPKR != 28000 {
		t.Errorf("expected budget 28000, got %v", profile.BudgetPKR)
	}
	if profile.Notes != "allergic to cats" {
		t.Errorf("expected notes to survive extraction, got %q", profile.Notes)
	}
}
