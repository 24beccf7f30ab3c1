// Package sqlite implements the user and file repositories on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ade-bello/filedepot/internal/files"
	"github.com/ade-bello/filedepot/internal/sqlite/migrations"
	"github.com/ade-bello/filedepot/internal/users"
)

// Open opens the database at path and migrates its schema. path can be a
// file path or ":memory:".
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; queue writers instead of failing
	// them with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// UserRepository implements users.Repository
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a user repository on an open database.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and returns it with its assigned id.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*users.User, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return &users.User{ID: id, Email: email, PasswordHash: passwordHash}, nil
}

// FindByEmail retrieves a user by email, or (nil, nil) if absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email)
}

// FindByCredentials retrieves a user by email and password digest, or
// (nil, nil) when either does not match.
func (r *UserRepository) FindByCredentials(ctx context.Context, email, passwordHash string) (*users.User, error) {
	return r.findOne(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ? AND password_hash = ?`,
		email, passwordHash)
}

// FindByID retrieves a user by id, or (nil, nil) if absent.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*users.User, error) {
	return r.findOne(ctx,
		`SELECT id, email, password_hash FROM users WHERE id = ?`, id)
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	var user users.User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FileRepository implements files.Repository
type FileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a file repository on an open database.
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a record and sets its ID.
func (r *FileRepository) Create(ctx context.Context, file *files.File) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO files (user_id, name, type, is_public, parent_id, local_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		file.UserID, file.Name, file.Type, file.IsPublic, file.ParentID, file.LocalPath,
	)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get file id: %w", err)
	}

	file.ID = id
	return nil
}

// FindByID retrieves a record by id, or (nil, nil) if absent.
func (r *FileRepository) FindByID(ctx context.Context, id int64) (*files.File, error) {
	var file files.File
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, is_public, parent_id, local_path
		 FROM files WHERE id = ?`, id,
	).Scan(
		&file.ID,
		&file.UserID,
		&file.Name,
		&file.Type,
		&file.IsPublic,
		&file.ParentID,
		&file.LocalPath,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	return &file, nil
}

// List returns records owned by userID under parentID, newest id first.
func (r *FileRepository) List(ctx context.Context, userID, parentID int64, offset, limit int) ([]*files.File, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, is_public, parent_id, local_path
		 FROM files
		 WHERE user_id = ? AND parent_id = ?
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?`,
		userID, parentID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var fileList []*files.File
	for rows.Next() {
		var file files.File
		err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.Name,
			&file.Type,
			&file.IsPublic,
			&file.ParentID,
			&file.LocalPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		fileList = append(fileList, &file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file rows: %w", err)
	}

	return fileList, nil
}

// SetPublic flips the visibility flag of a record.
func (r *FileRepository) SetPublic(ctx context.Context, id int64, public bool) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE files SET is_public = ? WHERE id = ?`, public, id,
	); err != nil {
		return fmt.Errorf("failed to update file visibility: %w", err)
	}
	return nil
}

// Count returns the number of file records.
func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}
