package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"example.com/learningmate-ops/backend/internal/localstate"
	"example.com/learningmate-ops/backend/internal/models"
	"example.com/learningmate-ops/backend/internal/notifications"
	"example.com/learningmate-ops/backend/internal/store"
)

// Options — настройки синхронизатора.
type Options struct {
	// Debounce — пауза тишины перед отправкой накопленной записи.
	Debounce time.Duration
	// SettleDelay — окно после завершения записи, в котором событие
	// с нашим write_id считается эхом собственной записи.
	SettleDelay time.Duration
}

type pendingWrite struct {
	payload []byte
	write   func(ctx context.Context, writeID string) error
}

// Syncer связывает локальное хранилище с API: гидратация при старте,
// отложенные записи с пропуском неизмененных коллекций и подписка на
// события изменения с подавлением эха собственных записей.
type Syncer struct {
	client *Client
	store  *store.Store
	local  *localstate.File
	logger *slog.Logger

	debounce time.Duration
	settle   time.Duration

	mu           gosync.Mutex
	fingerprints map[string]string
	pending      map[string]pendingWrite
	timers       map[string]*time.Timer
	inflight     int
	recentWrites map[string]time.Time
	hydrating    bool
	muted        bool
}

// New создает синхронизатор и подключает его к хранилищу. local может
// быть nil — тогда офлайн-копия не ведется.
func New(client *Client, st *store.Store, local *localstate.File, logger *slog.Logger, opts Options) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Syncer{
		client:       client,
		store:        st,
		local:        local,
		logger:       logger,
		debounce:     opts.Debounce,
		settle:       opts.SettleDelay,
		fingerprints: make(map[string]string),
		pending:      make(map[string]pendingWrite),
		timers:       make(map[string]*time.Timer),
		recentWrites: make(map[string]time.Time),
	}

	st.SetOnChange(s.onStoreChange)

	return s
}

func (s *Syncer) onStoreChange(key string) {
	s.mu.Lock()
	muted := s.muted
	s.mu.Unlock()
	if muted {
		return
	}

	if key == store.TargetKey {
		s.persistTarget()
		return
	}
	s.persistCollection(key)
}

// Hydrate загружает все коллекции и месячную цель с сервера и применяет
// их к хранилищу. Пустые справочники заменяются значениями по умолчанию,
// при недоступности сервера используется офлайн-копия. Повторный вызов
// во время выполняющейся гидратации не делает ничего.
func (s *Syncer) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.hydrating {
		s.mu.Unlock()
		return nil
	}
	s.hydrating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.hydrating = false
		s.mu.Unlock()
	}()

	var (
		wg        gosync.WaitGroup
		errMu     gosync.Mutex
		firstErr  error
		succeeded int
	)

	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	tasks := []func(context.Context) error{
		func(ctx context.Context) error {
			var items []models.Task
			if err := s.fetchInto(ctx, models.CollectionTasks, &items); err != nil {
				return err
			}
			s.store.ReplaceTasks(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.Lead
			if err := s.fetchInto(ctx, models.CollectionLeads, &items); err != nil {
				return err
			}
			s.store.ReplaceLeads(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.Sale
			if err := s.fetchInto(ctx, models.CollectionSales, &items); err != nil {
				return err
			}
			s.store.ReplaceSales(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.Expense
			if err := s.fetchInto(ctx, models.CollectionExpenses, &items); err != nil {
				return err
			}
			s.store.ReplaceExpenses(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.ContentItem
			if err := s.fetchInto(ctx, models.CollectionContent, &items); err != nil {
				return err
			}
			s.store.ReplaceContent(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.Agent
			if err := s.fetchInto(ctx, models.CollectionAgents, &items); err != nil {
				return err
			}
			if len(items) == 0 {
				items = models.DefaultAgents()
			}
			s.store.ReplaceAgents(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.TeamMember
			if err := s.fetchInto(ctx, models.CollectionTeamMembers, &items); err != nil {
				return err
			}
			if len(items) == 0 {
				items = models.DefaultTeam()
			}
			s.store.ReplaceTeamMembers(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.Version
			if err := s.fetchInto(ctx, models.CollectionVersions, &items); err != nil {
				return err
			}
			s.store.ReplaceVersions(items)
			return nil
		},
		func(ctx context.Context) error {
			var items []models.BatchProject
			if err := s.fetchInto(ctx, models.CollectionBatchProjects, &items); err != nil {
				return err
			}
			s.store.ReplaceBatchProjects(items)
			return nil
		},
		func(ctx context.Context) error {
			target, found, err := s.client.FetchMonthlyTarget(ctx)
			if err != nil {
				return err
			}
			if !found || target <= 0 {
				target = models.DefaultMonthlyTarget
			}
			s.setFingerprint(store.TargetKey, []byte(fmt.Sprintf("%d", target)))
			s.store.SetMonthlyTarget(target)
			return nil
		},
	}

	for _, task := range tasks {
		wg.Add(1)
		go func(run func(context.Context) error) {
			defer wg.Done()
			if err := run(ctx); err != nil {
				fail(err)
				return
			}
			errMu.Lock()
			succeeded++
			errMu.Unlock()
		}(task)
	}

	wg.Wait()

	if firstErr != nil {
		// Частично удачная гидратация уже применила свежие данные; откат
		// к офлайн-копии уместен только когда сервер недоступен целиком.
		if succeeded == 0 {
			s.logger.Warn("hydration failed, falling back to offline copy", slog.String("error", firstErr.Error()))
			s.restoreOffline()
		} else {
			s.logger.Warn("hydration partially failed", slog.String("error", firstErr.Error()))
		}
		return firstErr
	}

	s.saveOffline()
	return nil
}

// fetchInto загружает коллекцию, фиксирует ее отпечаток и декодирует
// содержимое в dest. Отпечаток ставится до применения к хранилищу,
// чтобы гидратация не породила обратную запись.
func (s *Syncer) fetchInto(ctx context.Context, name string, dest interface{}) error {
	if _, err := s.client.FetchCollectionInto(ctx, name, dest); err != nil {
		return err
	}

	normalized, err := json.Marshal(dest)
	if err != nil {
		return err
	}

	s.setFingerprint(name, normalized)
	return nil
}

func (s *Syncer) setFingerprint(key string, payload []byte) {
	s.mu.Lock()
	s.fingerprints[key] = string(payload)
	s.mu.Unlock()
}

// persistCollection ставит коллекцию в очередь на запись. Запись
// пропускается, если сериализованная форма не изменилась с прошлой
// успешной отправки.
func (s *Syncer) persistCollection(name string) {
	items, ok := s.store.CollectionItems(name)
	if !ok {
		return
	}

	payload, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("failed to serialize collection", slog.String("collection", name), slog.String("error", err.Error()))
		return
	}

	s.schedule(name, payload, func(ctx context.Context, writeID string) error {
		return s.client.ReplaceCollection(ctx, name, writeID, payload)
	})
}

func (s *Syncer) persistTarget() {
	target := s.store.MonthlyTarget()
	payload := []byte(fmt.Sprintf("%d", target))

	s.schedule(store.TargetKey, payload, func(ctx context.Context, writeID string) error {
		return s.client.SetMonthlyTarget(ctx, writeID, target)
	})
}

// schedule перезапускает таймер тишины для ключа. Каждое новое изменение
// заменяет отложенную запись, так что на сервер уходит последнее состояние.
func (s *Syncer) schedule(key string, payload []byte, write func(ctx context.Context, writeID string) error) {
	s.mu.Lock()
	if s.fingerprints[key] == string(payload) {
		// Nothing pending and nothing changed.
		if _, queued := s.pending[key]; !queued {
			s.mu.Unlock()
			return
		}
	}

	s.pending[key] = pendingWrite{payload: payload, write: write}
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}
	s.timers[key] = time.AfterFunc(s.debounce, func() {
		s.flushKey(key)
	})
	s.mu.Unlock()
}

// flushKey выполняет отложенную запись ключа. Отпечаток обновляется
// только при успехе, чтобы следующее изменение повторило отправку.
func (s *Syncer) flushKey(key string) {
	s.mu.Lock()
	pw, ok := s.pending[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	if timer, exists := s.timers[key]; exists {
		timer.Stop()
		delete(s.timers, key)
	}

	writeID := uuid.NewString()
	s.recentWrites[writeID] = time.Time{}
	s.inflight++
	s.mu.Unlock()

	err := pw.write(context.Background(), writeID)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		delete(s.recentWrites, writeID)
		s.mu.Unlock()
		s.logger.Warn("persist failed, will retry on next change",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	s.fingerprints[key] = string(pw.payload)
	s.recentWrites[writeID] = time.Now()
	s.pruneRecentLocked()
	s.mu.Unlock()

	s.saveOffline()
}

// Flush немедленно выполняет все отложенные записи. Используется при
// корректном завершении процесса.
func (s *Syncer) Flush() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	for key := range s.pending {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.flushKey(key)
	}
}

// Run держит подписку на поток событий сервера, переподключаясь при
// обрывах, пока не отменен контекст.
func (s *Syncer) Run(ctx context.Context) error {
	for {
		err := s.client.StreamEvents(ctx, s.handleEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			s.logger.Warn("event stream interrupted, reconnecting", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// handleEvent реагирует на событие изменения коллекции повторной
// гидратацией. Эхо собственной записи и события, пришедшие при
// незавершенных локальных записях, игнорируются.
func (s *Syncer) handleEvent(event notifications.Event) {
	if event.Type != notifications.EventCollectionChanged {
		return
	}

	s.mu.Lock()
	own := s.isOwnWriteLocked(event.WriteID)
	busy := len(s.pending) > 0 || s.inflight > 0
	s.mu.Unlock()

	if own || busy {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Hydrate(ctx); err != nil {
		s.logger.Warn("rehydration after remote change failed", slog.String("error", err.Error()))
	}
}

func (s *Syncer) isOwnWriteLocked(writeID string) bool {
	s.pruneRecentLocked()

	if writeID == "" {
		return false
	}

	completed, ok := s.recentWrites[writeID]
	if !ok {
		return false
	}

	// Zero time means the write is still in flight.
	return completed.IsZero() || time.Since(completed) < s.settle
}

// pruneRecentLocked удаляет идентификаторы завершенных записей с истекшим
// окном оседания, чтобы карта не росла бесконечно у долгоживущего агента.
func (s *Syncer) pruneRecentLocked() {
	for id, completed := range s.recentWrites {
		if !completed.IsZero() && time.Since(completed) >= s.settle {
			delete(s.recentWrites, id)
		}
	}
}

// saveOffline сохраняет текущее состояние хранилища как офлайн-копию,
// не трогая прочие локальные настройки.
func (s *Syncer) saveOffline() {
	if s.local == nil {
		return
	}

	state, err := s.local.Load()
	if err != nil {
		s.logger.Warn("failed to read local state", slog.String("error", err.Error()))
		state = localstate.State{}
	}

	data := models.SnapshotData{
		Tasks:         s.store.Tasks(),
		Leads:         s.store.Leads(),
		Sales:         s.store.Sales(),
		Expenses:      s.store.Expenses(),
		Content:       s.store.Content(),
		Agents:        s.store.Agents(),
		TeamMembers:   s.store.TeamMembers(),
		MonthlyTarget: s.store.MonthlyTarget(),
		BatchProjects: s.store.BatchProjects(),
	}

	state.MonthlyTarget = data.MonthlyTarget
	state.Offline = &data

	if err := s.local.Save(state); err != nil {
		s.logger.Warn("failed to save offline copy", slog.String("error", err.Error()))
	}
}

// restoreOffline применяет офлайн-копию к хранилищу. Хуки изменений на
// время применения заглушаются: восстановленные офлайн-данные никогда не
// отправляются на сервер, иначе устаревшая копия затерла бы чужие правки.
func (s *Syncer) restoreOffline() {
	if s.local == nil {
		return
	}

	state, err := s.local.Load()
	if err != nil || state.Offline == nil {
		return
	}

	s.mu.Lock()
	s.muted = true
	s.mu.Unlock()

	s.store.Restore(models.Version{Data: *state.Offline})

	s.mu.Lock()
	s.muted = false
	s.mu.Unlock()

	s.logger.Info("restored state from offline copy")
}
