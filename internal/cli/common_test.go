package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/danieljhkim/treepurge/internal/config"
	"github.com/danieljhkim/treepurge/internal/planner"
)

func TestFormatJSON(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{name: "simple map", input: map[string]string{"key": "value"}},
		{name: "empty map", input: map[string]string{}},
		{name: "plan", input: planner.NewPurgeAll("reason")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatJSON(tt.input)
			if err != nil {
				t.Fatalf("formatJSON() error = %v", err)
			}
			var v interface{}
			if err := json.Unmarshal([]byte(got), &v); err != nil {
				t.Errorf("formatJSON() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	got := FormatError(os.ErrNotExist)
	if !strings.Contains(got, "Error:") {
		t.Errorf("FormatError() = %q, expected to contain 'Error:'", got)
	}
}

func TestNewPlanner(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PlannerConfig
		wantErr bool
	}{
		{name: "defaults", cfg: config.PlannerConfig{}},
		{name: "explicit", cfg: config.PlannerConfig{RootDetection: "identity", DescendantScope: "section"}},
		{name: "bad detection", cfg: config.PlannerConfig{RootDetection: "depth"}, wantErr: true},
		{name: "bad scope", cfg: config.PlannerConfig{DescendantScope: "site"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newPlanner(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newPlanner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p == nil {
				t.Error("newPlanner() returned nil planner")
			}
		})
	}
}

func TestDisplayURLs(t *testing.T) {
	got := displayURLs([]string{"", "products/widget"})
	if got[0] != "/" || got[1] != "/products/widget" {
		t.Errorf("displayURLs() = %v", got)
	}
}

func TestSubmittedMessage(t *testing.T) {
	if got := submittedMessage(planner.NewPurgeAll("x")); got != "Purged everything" {
		t.Errorf("submittedMessage(all) = %q", got)
	}
	plan, err := planner.NewPurgeURLs("a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if got := submittedMessage(plan); got != "Purged 2 URLs" {
		t.Errorf("submittedMessage(urls) = %q", got)
	}
}
