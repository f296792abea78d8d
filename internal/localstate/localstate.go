package localstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"example.com/learningmate-ops/backend/internal/models"
)

// State — локальное key-value хранилище клиента: тема интерфейса, последняя
// месячная цель и оффлайн-копия всех коллекций на случай недоступного бэкенда.
type State struct {
	Theme         string               `json:"theme,omitempty"`
	MonthlyTarget int64                `json:"monthlyTarget,omitempty"`
	Offline       *models.SnapshotData `json:"offline,omitempty"`
}

// File хранит State в JSON-файле с атомарной записью через tmp + rename.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile создает локальное хранилище по заданному пути.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load читает состояние с диска. Отсутствующий файл — не ошибка,
// возвращается пустое состояние.
func (f *File) Load() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var state State

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, fmt.Errorf("read local state: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode local state: %w", err)
	}

	return state, nil
}

// Save атомарно записывает состояние на диск.
func (f *File) Save(state State) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write local state: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace local state: %w", err)
	}

	return nil
}
