package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"example.com/learningmate-ops/backend/internal/localstate"
	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/notifications"
	"example.com/learningmate-ops/backend/internal/store"
)

// fakeBackend эмулирует API хранилища коллекций для тестов синхронизатора.
type fakeBackend struct {
	mu          gosync.Mutex
	collections map[string]json.RawMessage
	target      int64
	hasTarget   bool
	puts        map[string]int
	gets        map[string]int
	lastWriteID map[string]string
	failPuts    bool
	failGets    map[string]bool

	server *httptest.Server
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		collections: make(map[string]json.RawMessage),
		puts:        make(map[string]int),
		gets:        make(map[string]int),
		lastWriteID: make(map[string]string),
		failGets:    make(map[string]bool),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.URL.Path == "/api/v1/settings/monthly-target":
		if r.Method == http.MethodGet {
			if !b.hasTarget {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]int64{"monthly_target": b.target})
			return
		}
		var body struct {
			WriteID       string `json:"write_id"`
			MonthlyTarget int64  `json:"monthly_target"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		b.target = body.MonthlyTarget
		b.hasTarget = true
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(r.URL.Path, "/api/v1/collections/"):
		name := strings.TrimPrefix(r.URL.Path, "/api/v1/collections/")
		if r.Method == http.MethodGet {
			b.gets[name]++
			if b.failGets[name] {
				http.Error(w, "storage unavailable", http.StatusInternalServerError)
				return
			}
			items, ok := b.collections[name]
			if !ok {
				items = json.RawMessage("[]")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"items":`))
			w.Write(items)
			w.Write([]byte(`}`))
			return
		}

		if b.failPuts {
			http.Error(w, "storage unavailable", http.StatusInternalServerError)
			return
		}

		var body struct {
			WriteID string          `json:"write_id"`
			Items   json.RawMessage `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.puts[name]++
		b.collections[name] = body.Items
		b.lastWriteID[name] = body.WriteID
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) putCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts[name]
}

func (b *fakeBackend) getCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets[name]
}

func (b *fakeBackend) writeID(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastWriteID[name]
}

func (b *fakeBackend) setCollection(name string, items interface{}) {
	raw, _ := json.Marshal(items)
	b.mu.Lock()
	b.collections[name] = raw
	b.mu.Unlock()
}

func (b *fakeBackend) storedItems(name string, dest interface{}) {
	b.mu.Lock()
	raw := b.collections[name]
	b.mu.Unlock()
	json.Unmarshal(raw, dest)
}

func (b *fakeBackend) setFailPuts(fail bool) {
	b.mu.Lock()
	b.failPuts = fail
	b.mu.Unlock()
}

func (b *fakeBackend) setFailGet(name string, fail bool) {
	b.mu.Lock()
	b.failGets[name] = fail
	b.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSyncer(backendURL string, local *localstate.File, debounce time.Duration) (*Syncer, *store.Store) {
	st := store.New()
	client := NewClient(backendURL, 5*time.Second)
	syncer := New(client, st, local, quietLogger(), Options{
		Debounce:    debounce,
		SettleDelay: 500 * time.Millisecond,
	})
	return syncer, st
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func sampleSales(ids ...string) []models.Sale {
	sales := make([]models.Sale, 0, len(ids))
	for _, id := range ids {
		sales = append(sales, models.Sale{
			ID:        id,
			AgentID:   "agent-1",
			Amount:    1000,
			Type:      models.SaleTypeCall,
			CreatedAt: "2024-06-10T09:00:00Z",
		})
	}
	return sales
}

// TestPersistSkipsUnchangedCollection проверяет пропуск записи, когда
// сериализованная форма коллекции не изменилась.
func TestPersistSkipsUnchangedCollection(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	_, st := newTestSyncer(backend.server.URL, nil, 10*time.Millisecond)

	st.ReplaceSales(sampleSales("s1"))
	waitFor(t, 2*time.Second, func() bool {
		return backend.putCount(models.CollectionSales) == 1
	})

	st.ReplaceSales(sampleSales("s1"))
	time.Sleep(100 * time.Millisecond)

	if got := backend.putCount(models.CollectionSales); got != 1 {
		t.Fatalf("unchanged collection was re-sent: %d writes", got)
	}
}

// TestDebounceCoalescesRapidEdits проверяет, что серия быстрых изменений
// схлопывается в одну запись с последним состоянием.
func TestDebounceCoalescesRapidEdits(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	_, st := newTestSyncer(backend.server.URL, nil, 80*time.Millisecond)

	st.ReplaceSales(sampleSales("s1"))
	st.ReplaceSales(sampleSales("s1", "s2"))
	st.ReplaceSales(sampleSales("s1", "s2", "s3"))

	waitFor(t, 2*time.Second, func() bool {
		return backend.putCount(models.CollectionSales) >= 1
	})
	time.Sleep(150 * time.Millisecond)

	if got := backend.putCount(models.CollectionSales); got != 1 {
		t.Fatalf("expected a single coalesced write, got %d", got)
	}

	var stored []models.Sale
	backend.storedItems(models.CollectionSales, &stored)
	if len(stored) != 3 {
		t.Fatalf("expected last state with 3 sales, got %d", len(stored))
	}
}

// TestFailedPersistRetriesOnNextChange проверяет, что после неудачной
// записи отпечаток не обновляется и следующее изменение повторяет отправку.
func TestFailedPersistRetriesOnNextChange(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	syncer, st := newTestSyncer(backend.server.URL, nil, 10*time.Millisecond)

	backend.setFailPuts(true)
	st.ReplaceSales(sampleSales("s1"))
	syncer.Flush()

	if got := backend.putCount(models.CollectionSales); got != 0 {
		t.Fatalf("failed write should not be recorded, got %d", got)
	}

	backend.setFailPuts(false)
	st.ReplaceSales(sampleSales("s1"))
	waitFor(t, 2*time.Second, func() bool {
		return backend.putCount(models.CollectionSales) == 1
	})
}

// TestHydrateAppliesServerStateAndDefaults проверяет гидратацию: данные
// сервера попадают в хранилище, пустые справочники заменяются значениями
// по умолчанию, и гидратация не порождает обратных записей.
func TestHydrateAppliesServerStateAndDefaults(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	backend.setCollection(models.CollectionSales, sampleSales("s1", "s2"))

	syncer, st := newTestSyncer(backend.server.URL, nil, 50*time.Millisecond)

	if err := syncer.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if got := len(st.Sales()); got != 2 {
		t.Fatalf("expected 2 hydrated sales, got %d", got)
	}
	if len(st.Agents()) == 0 {
		t.Fatal("empty agents collection should fall back to defaults")
	}
	if got := st.MonthlyTarget(); got != models.DefaultMonthlyTarget {
		t.Fatalf("missing target should fall back to default, got %d", got)
	}

	time.Sleep(120 * time.Millisecond)
	if got := backend.putCount(models.CollectionSales); got != 0 {
		t.Fatalf("hydration must not write back unchanged collections, got %d writes", got)
	}
}

// TestOwnWriteEchoIsIgnored проверяет подавление эха: событие с нашим
// write_id не вызывает повторную гидратацию, чужое — вызывает.
func TestOwnWriteEchoIsIgnored(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	syncer, st := newTestSyncer(backend.server.URL, nil, 10*time.Millisecond)

	st.ReplaceSales(sampleSales("s1"))
	waitFor(t, 2*time.Second, func() bool {
		return backend.putCount(models.CollectionSales) == 1
	})

	ownID := backend.writeID(models.CollectionSales)
	if ownID == "" {
		t.Fatal("backend did not record a write id")
	}

	before := backend.getCount(models.CollectionSales)
	syncer.handleEvent(notifications.Event{
		Type:       notifications.EventCollectionChanged,
		Collection: models.CollectionSales,
		WriteID:    ownID,
	})
	if got := backend.getCount(models.CollectionSales); got != before {
		t.Fatalf("own write echo triggered rehydration: %d -> %d fetches", before, got)
	}

	syncer.handleEvent(notifications.Event{
		Type:       notifications.EventCollectionChanged,
		Collection: models.CollectionSales,
		WriteID:    "remote-client-write",
	})
	if got := backend.getCount(models.CollectionSales); got <= before {
		t.Fatal("foreign write should trigger rehydration")
	}
}

// TestHydrateFallsBackToOfflineCopy проверяет восстановление из
// офлайн-копии при недоступном сервере.
func TestHydrateFallsBackToOfflineCopy(t *testing.T) {
	local := localstate.NewFile(filepath.Join(t.TempDir(), "state.json"))

	offline := models.SnapshotData{
		Sales:         sampleSales("offline-1"),
		MonthlyTarget: 250000,
	}
	if err := local.Save(localstate.State{Offline: &offline}); err != nil {
		t.Fatalf("seed local state: %v", err)
	}

	backend := newFakeBackend()
	backend.server.Close() // сервер недоступен

	syncer, st := newTestSyncer(backend.server.URL, local, 10*time.Millisecond)

	if err := syncer.Hydrate(context.Background()); err == nil {
		t.Fatal("expected hydrate error with unreachable server")
	}

	if got := len(st.Sales()); got != 1 {
		t.Fatalf("expected offline sales restored, got %d", got)
	}
	if got := st.MonthlyTarget(); got != 250000 {
		t.Fatalf("expected offline target restored, got %d", got)
	}

	syncer.mu.Lock()
	pending := len(syncer.pending)
	syncer.mu.Unlock()
	if pending != 0 {
		t.Fatalf("offline restore must not schedule writes, %d pending", pending)
	}
}

// TestPartialHydrateFailureKeepsFetchedData проверяет, что при частично
// неудачной гидратации удачно загруженные коллекции не затираются
// офлайн-копией и офлайн-данные не отправляются на сервер.
func TestPartialHydrateFailureKeepsFetchedData(t *testing.T) {
	local := localstate.NewFile(filepath.Join(t.TempDir(), "state.json"))

	offline := models.SnapshotData{
		Agents:        []models.Agent{{ID: "stale", Name: "Stale"}},
		MonthlyTarget: 250000,
	}
	if err := local.Save(localstate.State{Offline: &offline}); err != nil {
		t.Fatalf("seed local state: %v", err)
	}

	backend := newFakeBackend()
	defer backend.server.Close()

	backend.setCollection(models.CollectionAgents, []models.Agent{{ID: "fresh", Name: "Fresh"}})
	backend.setFailGet(models.CollectionSales, true)

	syncer, st := newTestSyncer(backend.server.URL, local, 10*time.Millisecond)

	if err := syncer.Hydrate(context.Background()); err == nil {
		t.Fatal("expected hydrate error when one collection fails")
	}

	agents := st.Agents()
	if len(agents) != 1 || agents[0].ID != "fresh" {
		t.Fatalf("fetched agents were clobbered by offline copy: %+v", agents)
	}

	time.Sleep(100 * time.Millisecond)
	if got := backend.putCount(models.CollectionAgents); got != 0 {
		t.Fatalf("partial hydrate failure must not push data back, got %d writes", got)
	}
}

// TestCompletedWriteIDsArePruned проверяет, что карта идентификаторов
// собственных записей не растет: записи с истекшим окном оседания
// вычищаются при следующей отправке.
func TestCompletedWriteIDsArePruned(t *testing.T) {
	backend := newFakeBackend()
	defer backend.server.Close()

	st := store.New()
	client := NewClient(backend.server.URL, 5*time.Second)
	syncer := New(client, st, nil, quietLogger(), Options{
		Debounce:    5 * time.Millisecond,
		SettleDelay: 30 * time.Millisecond,
	})

	for i := 1; i <= 3; i++ {
		st.ReplaceSales(sampleSales(fmt.Sprintf("s%d", i)))
		want := i
		waitFor(t, 2*time.Second, func() bool {
			return backend.putCount(models.CollectionSales) == want
		})
		time.Sleep(50 * time.Millisecond) // даем окну оседания истечь
	}

	syncer.mu.Lock()
	remembered := len(syncer.recentWrites)
	syncer.mu.Unlock()

	if remembered > 1 {
		t.Fatalf("expected expired write ids to be pruned, %d remembered", remembered)
	}
}
