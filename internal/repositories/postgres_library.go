package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PaulRosu01/PrivatePixel/internal/db"
	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

const albumsCreatedKey = "albums_created"

// PostgresLibraryRepository provides PostgreSQL-backed persistence for the
// library snapshot.
type PostgresLibraryRepository struct {
	pool db.Pool
}

// NewPostgresLibraryRepository constructs a library repository backed by PostgreSQL.
func NewPostgresLibraryRepository(pool db.Pool) *PostgresLibraryRepository {
	return &PostgresLibraryRepository{pool: pool}
}

// Load reads the persisted snapshot.
func (r *PostgresLibraryRepository) Load(ctx context.Context) (library.Snapshot, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return library.Snapshot{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var snap library.Snapshot

	var created int64
	err = conn.QueryRow(ctx, `SELECT value FROM library_meta WHERE key = $1`, albumsCreatedKey).Scan(&created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return library.Snapshot{}, ErrNotFound
		}
		return library.Snapshot{}, fmt.Errorf("select library meta: %w", err)
	}
	snap.Albums.Created = int(created)

	rows, err := conn.Query(ctx, `
        SELECT id, uri, created_at, media_kind, source_origin, width, height, favorite, remote_id
        FROM media_records
        ORDER BY position
    `)
	if err != nil {
		return library.Snapshot{}, fmt.Errorf("query media records: %w", err)
	}
	for rows.Next() {
		var (
			rec       models.MediaRecord
			createdAt sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.URI, &createdAt, &rec.Kind, &rec.Origin, &rec.Width, &rec.Height, &rec.Favorite, &rec.RemoteID); err != nil {
			rows.Close()
			return library.Snapshot{}, fmt.Errorf("scan media record: %w", err)
		}
		if createdAt.Valid {
			rec.CreatedAt = createdAt.Time.UTC()
		}
		snap.Records = append(snap.Records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return library.Snapshot{}, fmt.Errorf("iterate media records: %w", err)
	}

	rows, err = conn.Query(ctx, `
        SELECT id, title, cover_media_id, created_seq
        FROM albums
        ORDER BY created_seq
    `)
	if err != nil {
		return library.Snapshot{}, fmt.Errorf("query albums: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var (
			album models.ManualAlbum
			cover sql.NullString
		)
		if err := rows.Scan(&album.ID, &album.Title, &cover, &album.CreatedSeq); err != nil {
			rows.Close()
			return library.Snapshot{}, fmt.Errorf("scan album: %w", err)
		}
		album.CoverMediaID = cover.String
		album.MediaIDs = make(map[string]struct{})
		index[album.ID] = len(snap.Albums.Albums)
		snap.Albums.Albums = append(snap.Albums.Albums, album)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return library.Snapshot{}, fmt.Errorf("iterate albums: %w", err)
	}

	rows, err = conn.Query(ctx, `SELECT album_id, media_id FROM album_members`)
	if err != nil {
		return library.Snapshot{}, fmt.Errorf("query album members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var albumID, mediaID string
		if err := rows.Scan(&albumID, &mediaID); err != nil {
			return library.Snapshot{}, fmt.Errorf("scan album member: %w", err)
		}
		if pos, ok := index[albumID]; ok {
			snap.Albums.Albums[pos].MediaIDs[mediaID] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return library.Snapshot{}, fmt.Errorf("iterate album members: %w", err)
	}

	return snap, nil
}

// Save replaces the persisted snapshot in one transaction.
func (r *PostgresLibraryRepository) Save(ctx context.Context, snap library.Snapshot) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM album_members`)
	batch.Queue(`DELETE FROM albums`)
	batch.Queue(`DELETE FROM media_records`)

	for i, rec := range snap.Records {
		var createdAt sql.NullTime
		if rec.HasTimestamp() {
			createdAt = sql.NullTime{Valid: true, Time: rec.CreatedAt.UTC()}
		}
		batch.Queue(`
            INSERT INTO media_records (id, position, uri, created_at, media_kind, source_origin, width, height, favorite, remote_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        `, rec.ID, i, rec.URI, createdAt, string(rec.Kind), string(rec.Origin), rec.Width, rec.Height, rec.Favorite, rec.RemoteID)
	}

	for _, album := range snap.Albums.Albums {
		cover := sql.NullString{String: album.CoverMediaID, Valid: album.CoverMediaID != ""}
		batch.Queue(`
            INSERT INTO albums (id, title, cover_media_id, created_seq)
            VALUES ($1, $2, $3, $4)
        `, album.ID, album.Title, cover, album.CreatedSeq)
		for _, mediaID := range sortedMembers(album) {
			batch.Queue(`INSERT INTO album_members (album_id, media_id) VALUES ($1, $2)`, album.ID, mediaID)
		}
	}

	batch.Queue(`
        INSERT INTO library_meta (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
    `, albumsCreatedKey, snap.Albums.Created)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError("save library", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError("commit library", err)
	}
	return nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "23505":
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
