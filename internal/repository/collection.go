package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/learningmate-ops/backend/internal/models"
)

// Record — один документ коллекции: идентификатор записи и ее JSON-тело.
type Record struct {
	ID      string
	Payload json.RawMessage
}

// CollectionRepository хранит коллекции дашборда как упорядоченные JSONB-
// документы. Коллекция трактуется как значение: запись всегда заменяет
// содержимое целиком (delete + insert в одной транзакции), а не применяет диф.
type CollectionRepository struct {
	db *pgxpool.Pool
}

// NewCollectionRepository создает репозиторий коллекций.
func NewCollectionRepository(db *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// ReadAll возвращает все документы коллекции в порядке сохранения.
func (r *CollectionRepository) ReadAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if !models.KnownCollection(collection) {
		return nil, ErrUnknownCollection
	}

	rows, err := r.db.Query(ctx,
		`SELECT payload
		 FROM collection_records
		 WHERE collection = $1
		 ORDER BY position`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]json.RawMessage, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		items = append(items, json.RawMessage(payload))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// ReplaceAll заменяет содержимое коллекции переданным набором документов.
func (r *CollectionRepository) ReplaceAll(ctx context.Context, collection string, records []Record) error {
	if !models.KnownCollection(collection) {
		return ErrUnknownCollection
	}

	for _, record := range records {
		if record.ID == "" || len(record.Payload) == 0 {
			return ErrInvalid
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM collection_records WHERE collection = $1`,
		collection,
	); err != nil {
		return err
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for i, record := range records {
			batch.Queue(
				`INSERT INTO collection_records (collection, record_id, position, payload)
				 VALUES ($1, $2, $3, $4)`,
				collection, record.ID, i, []byte(record.Payload),
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}
		if err := results.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
