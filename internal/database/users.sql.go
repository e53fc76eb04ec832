package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, image, role, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Image,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (name, email, image, role, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

type CreateUserParams struct {
	Name         *string
	Email        string
	Image        *string
	Role         string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Name,
		arg.Email,
		arg.Image,
		arg.Role,
		arg.PasswordHash,
	)
	return scanUser(row)
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserById = `-- name: GetUserById :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserById(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserById, id))
}

const getUserRole = `-- name: GetUserRole :one
SELECT role FROM users WHERE id = $1`

func (q *Queries) GetUserRole(ctx context.Context, id uuid.UUID) (string, error) {
	var role string
	err := q.db.QueryRow(ctx, getUserRole, id).Scan(&role)
	return role, err
}
