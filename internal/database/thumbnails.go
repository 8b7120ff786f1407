package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordRun replaces the video's record and its thumbnail rows in one
// transaction.
func (d *Database) RecordRun(ctx context.Context, run Run) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_run", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	v := run.Video
	_, err = tx.ExecContext(ctx, `
		INSERT INTO videos (path, mod_time, status, frame_index, frames_scored, orientation, error, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(path) DO UPDATE SET
			mod_time = excluded.mod_time,
			status = excluded.status,
			frame_index = excluded.frame_index,
			frames_scored = excluded.frames_scored,
			orientation = excluded.orientation,
			error = excluded.error,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, v.Path, v.ModTime.Unix(), string(v.Status), v.FrameIndex, v.FramesScored, v.Orientation,
		nullString(v.Error), nullString(v.RunID))
	if err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM thumbnails WHERE video_path = ?`, v.Path); err != nil {
		return fmt.Errorf("clear thumbnails: %w", err)
	}

	for _, th := range run.Thumbnails {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO thumbnails (video_path, width, height, storage_key, bytes)
			VALUES (?, ?, ?, ?, ?)
		`, v.Path, th.Width, th.Height, th.StorageKey, th.Bytes)
		if err != nil {
			return fmt.Errorf("insert thumbnail %dx%d: %w", th.Width, th.Height, err)
		}
	}

	return tx.Commit()
}

// GetVideo returns the record for path, or nil when the video was never
// processed.
func (d *Database) GetVideo(ctx context.Context, path string) (v *Video, err error) {
	start := time.Now()
	defer func() { recordQuery("get_video", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		modTime, updatedAt int64
		status             string
		errText, runID     sql.NullString
	)
	v = &Video{}
	err = d.db.QueryRowContext(ctx, `
		SELECT path, mod_time, status, frame_index, frames_scored, orientation, error, run_id, updated_at
		FROM videos WHERE path = ?
	`, path).Scan(&v.Path, &modTime, &status, &v.FrameIndex, &v.FramesScored, &v.Orientation, &errText, &runID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	v.ModTime = time.Unix(modTime, 0)
	v.UpdatedAt = time.Unix(updatedAt, 0)
	v.Status = VideoStatus(status)
	v.Error = errText.String
	v.RunID = runID.String
	return v, nil
}

// ListThumbnails returns stored thumbnails, all of them when videoPath is
// empty, ordered by video then size.
func (d *Database) ListThumbnails(ctx context.Context, videoPath string) (out []Thumbnail, err error) {
	start := time.Now()
	defer func() { recordQuery("list_thumbnails", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT video_path, width, height, storage_key, bytes, created_at FROM thumbnails`
	var args []interface{}
	if videoPath != "" {
		query += ` WHERE video_path = ?`
		args = append(args, videoPath)
	}
	query += ` ORDER BY video_path, width, height`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var th Thumbnail
		var created int64
		if err = rows.Scan(&th.VideoPath, &th.Width, &th.Height, &th.StorageKey, &th.Bytes, &created); err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		th.CreatedAt = time.Unix(created, 0)
		out = append(out, th)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thumbnails: %w", err)
	}
	return out, nil
}

// DeleteVideo removes the video's record and returns the storage keys its
// thumbnails were stored under.
func (d *Database) DeleteVideo(ctx context.Context, path string) (keys []string, err error) {
	start := time.Now()
	defer func() { recordQuery("delete_video", start, err) }()

	thumbs, err := d.ListThumbnails(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, th := range thumbs {
		keys = append(keys, th.StorageKey)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err = d.db.ExecContext(ctx, `DELETE FROM videos WHERE path = ?`, path); err != nil {
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return keys, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
