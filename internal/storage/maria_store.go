package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/annel0/caaluza/internal/mapformat"
)

// MariaStore хранит карты в MariaDB/MySQL, в таблице maps
type MariaStore struct {
	db *sql.DB
}

// NewMariaStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaStore(dsn string) (*MariaStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store := &MariaStore{db: db}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return store, nil
}

func (r *MariaStore) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS maps (
			name       VARCHAR(128) PRIMARY KEY,
			author     VARCHAR(128) NOT NULL DEFAULT '',
			bricks     INT          NOT NULL DEFAULT 0,
			document   MEDIUMTEXT   NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP,
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы maps: %w", err)
	}
	return nil
}

// Save сохраняет карту через INSERT ... ON DUPLICATE KEY UPDATE
func (r *MariaStore) Save(ctx context.Context, name string, m mapformat.Map) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	data, err := encodeMap(m)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO maps (name, author, bricks, document)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			author = VALUES(author),
			bricks = VALUES(bricks),
			document = VALUES(document),
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, name, m.Metadata.Author, len(m.Bricks), string(data)); err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", name, err)
	}
	return nil
}

// Load загружает карту
func (r *MariaStore) Load(ctx context.Context, name string) (mapformat.Map, error) {
	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM maps WHERE name = ?`, name).Scan(&document)
	if err == sql.ErrNoRows {
		return mapformat.Map{}, notFound(name)
	}
	if err != nil {
		return mapformat.Map{}, fmt.Errorf("ошибка загрузки карты %s: %w", name, err)
	}
	return decodeMap([]byte(document))
}

// Delete удаляет карту
func (r *MariaStore) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM maps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
	}
	if affected == 0 {
		return notFound(name)
	}
	return nil
}

// List возвращает имена карт
func (r *MariaStore) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка карт: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода результатов: %w", err)
	}
	return names, nil
}

// Close закрывает соединение с базой
func (r *MariaStore) Close() error {
	return r.db.Close()
}
