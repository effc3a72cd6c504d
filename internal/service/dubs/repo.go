package dubs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteRepo хранит историю озвучек. Пара (image_hash, engine) уникальна:
// повторная озвучка той же картинки тем же движком обновляет запись,
// а не плодит дубли.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) SQLiteRepo {
	return SQLiteRepo{db: db}
}

// InitSchema настраивает PRAGMA и создаёт таблицу истории.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
	PRAGMA busy_timeout = 10000;
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous  = NORMAL;
	PRAGMA foreign_keys = ON;

	create table if not exists dubs (
		id integer primary key autoincrement not null,
		image_hash text not null,
		engine text not null,
		transcript text not null,
		language_code text not null,
		audio_file text not null,
		format text not null,
		created_at text not null,
		unique (image_hash, engine)
	);`)
	if err != nil {
		return fmt.Errorf("init dubs schema: %w", err)
	}
	return nil
}

// Upsert сохраняет озвучку; конфликт по (image_hash, engine) перезаписывает запись.
func (r SQLiteRepo) Upsert(ctx context.Context, d Dub) (Dub, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	// returning id: при обновлении существующей записи LastInsertId вернул бы
	// чужой rowid, а не id перезаписанной строки
	err := r.db.
		QueryRowContext(
			ctx,
			`insert into dubs (image_hash, engine, transcript, language_code, audio_file, format, created_at)
			 values ($1, $2, $3, $4, $5, $6, $7)
			 on conflict (image_hash, engine) do update set
			   transcript = excluded.transcript,
			   language_code = excluded.language_code,
			   audio_file = excluded.audio_file,
			   format = excluded.format,
			   created_at = excluded.created_at
			 returning id`,
			d.ImageHash, d.Engine, d.Transcript, d.LanguageCode, d.AudioFile, d.Format,
			d.CreatedAt.Format(time.RFC3339),
		).
		Scan(&d.ID)
	if err != nil {
		return Dub{}, fmt.Errorf("upsert dub: %w", err)
	}
	return d, nil
}

// GetByHashEngine ищет готовую озвучку той же картинки тем же движком.
// Отсутствие записи — не ошибка: возвращается (Dub{}, false, nil).
func (r SQLiteRepo) GetByHashEngine(ctx context.Context, imageHash, engine string) (Dub, bool, error) {
	d := Dub{}
	var createdAt string

	err := r.db.
		QueryRowContext(
			ctx,
			`select id, image_hash, engine, transcript, language_code, audio_file, format, created_at
			 from dubs where image_hash = $1 and engine = $2`,
			imageHash, engine,
		).
		Scan(&d.ID, &d.ImageHash, &d.Engine, &d.Transcript, &d.LanguageCode, &d.AudioFile, &d.Format, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Dub{}, false, nil
	}
	if err != nil {
		return Dub{}, false, fmt.Errorf("get dub by hash: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return d, true, nil
}

// Recent возвращает n последних озвучек, новые первыми.
func (r SQLiteRepo) Recent(ctx context.Context, n int) ([]Dub, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := r.db.QueryContext(
		ctx,
		`select id, image_hash, engine, transcript, language_code, audio_file, format, created_at
		 from dubs order by created_at desc, id desc limit $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent dubs: %w", err)
	}
	defer rows.Close()

	res := []Dub{}
	for rows.Next() {
		d := Dub{}
		var createdAt string
		if err := rows.Scan(&d.ID, &d.ImageHash, &d.Engine, &d.Transcript, &d.LanguageCode, &d.AudioFile, &d.Format, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dub row: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		res = append(res, d)
	}
	return res, rows.Err()
}
