package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"example.com/learningmate-ops/backend/internal/models"
)

// TestSaveLoadRoundTrip проверяет сохранение и чтение состояния.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "hub.json")
	file := NewFile(path)

	saved := State{
		Theme:         "dark",
		MonthlyTarget: 500000,
		Offline: &models.SnapshotData{
			Sales: []models.Sale{{ID: "s1", Type: models.SaleTypeCall, Amount: 1000}},
		},
	}

	if err := file.Save(saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := file.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Theme != "dark" || loaded.MonthlyTarget != 500000 {
		t.Fatalf("unexpected state: %+v", loaded)
	}
	if loaded.Offline == nil || len(loaded.Offline.Sales) != 1 || loaded.Offline.Sales[0].Amount != 1000 {
		t.Fatalf("offline snapshot not restored: %+v", loaded.Offline)
	}
}

// TestLoadMissingFile проверяет, что отсутствующий файл дает пустое состояние.
func TestLoadMissingFile(t *testing.T) {
	file := NewFile(filepath.Join(t.TempDir(), "missing.json"))

	state, err := file.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state.Theme != "" || state.Offline != nil {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

// TestSaveLeavesNoTempFile проверяет, что временный файл не остается на диске.
func TestSaveLeavesNoTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.json")
	file := NewFile(path)

	if err := file.Save(State{Theme: "light"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("expected temp file to be removed after rename")
	}
}
