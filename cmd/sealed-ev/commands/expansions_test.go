package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileExpansions(t *testing.T) {
	data := `[
		{"id": 10, "name": "Bloomburrow", "sampleCards": ["Mabel, Heir to Cragflame"], "productNames": ["Bloomburrow Play Booster Box"]},
		{"id": 11, "name": "Duskmourn"}
	]`
	path := filepath.Join(t.TempDir(), "expansions.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	source := &fileExpansions{path: path}
	expansions, err := source.Expansions(context.Background())
	if err != nil {
		t.Fatalf("Expansions() failed: %v", err)
	}
	if len(expansions) != 2 {
		t.Fatalf("got %d expansions, want 2", len(expansions))
	}
	if expansions[0].ID != 10 || expansions[0].Name != "Bloomburrow" {
		t.Errorf("expansion[0] = %+v", expansions[0])
	}
	if len(expansions[0].SampleCards) != 1 || len(expansions[0].ProductNames) != 1 {
		t.Errorf("expansion[0] samples = %+v", expansions[0])
	}
	if expansions[1].ID != 11 || expansions[1].SampleCards != nil {
		t.Errorf("expansion[1] = %+v", expansions[1])
	}
}

func TestFileExpansionsMissing(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.json")} {
		source := &fileExpansions{path: path}
		expansions, err := source.Expansions(context.Background())
		if err != nil {
			t.Errorf("Expansions(%q) failed: %v", path, err)
		}
		if expansions != nil {
			t.Errorf("Expansions(%q) = %+v, want nil", path, expansions)
		}
	}
}

func TestFileExpansionsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expansions.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	source := &fileExpansions{path: path}
	if _, err := source.Expansions(context.Background()); err == nil {
		t.Error("Expansions() should reject a non-array payload")
	}
}
