package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/todoflow-ai/todoflow/internal/domain"
)

const refreshedAtKey = "refreshed_at"

// TaskCache holds the last task list fetched from the backend so tasks
// can be shown without a round trip. The backend stays authoritative:
// the cache is replaced wholesale on every refresh and never written to
// from local edits.
type TaskCache struct {
	db *DB
}

// NewTaskCache creates a task cache on the given database.
func NewTaskCache(db *DB) *TaskCache {
	return &TaskCache{db: db}
}

// ReplaceAll atomically swaps the cached task list for the given one and
// stamps the refresh time.
func (c *TaskCache) ReplaceAll(tasks []domain.Task) error {
	tx, err := c.db.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin cache replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clearing task cache: %w", err)
	}

	for _, task := range tasks {
		_, err := tx.Exec(
			`INSERT INTO tasks (id, user_id, title, description, completed, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.UserID, task.Title, task.Description, boolToInt(task.Completed),
			task.CreatedAt.UTC().Format(time.RFC3339), task.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("caching task %s: %w", task.ID, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO cache_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		refreshedAtKey, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("stamping cache refresh: %w", err)
	}

	return tx.Commit()
}

// List returns the cached tasks, newest first.
func (c *TaskCache) List() ([]domain.Task, error) {
	rows, err := c.db.sql.Query(
		`SELECT id, user_id, title, description, completed, created_at, updated_at
		 FROM tasks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cached tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var task domain.Task
		var completed int
		var createdAt, updatedAt string
		if err := rows.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
			&completed, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning cached task: %w", err)
		}
		task.Completed = completed != 0
		task.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		task.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// RefreshedAt returns when the cache was last replaced, or zero time if
// it never was.
func (c *TaskCache) RefreshedAt() (time.Time, error) {
	var value string
	err := c.db.sql.QueryRow("SELECT value FROM cache_meta WHERE key = ?", refreshedAtKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// Count returns the number of cached tasks.
func (c *TaskCache) Count() (int, error) {
	var n int
	err := c.db.sql.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
