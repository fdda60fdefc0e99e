package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/entities"
	apperrors "freight-system/pkg/errors"
)

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByLogin(ctx context.Context, login string) (*entities.User, error)
	GetPermissionsMap(ctx context.Context, userID uint64) (map[string]bool, error)
	// FindIDsWithAnyPermission возвращает получателей рассылки - всех
	// актёров, у которых есть хотя бы один из указанных пермишенов.
	FindIDsWithAnyPermission(ctx context.Context, permissions []string) ([]uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	var u entities.User
	err := r.storage.QueryRow(ctx,
		`SELECT id, fio, login, password, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Fio, &u.Login, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*entities.User, error) {
	var u entities.User
	err := r.storage.QueryRow(ctx,
		`SELECT id, fio, login, password, created_at FROM users WHERE login = $1`, login,
	).Scan(&u.ID, &u.Fio, &u.Login, &u.Password, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetPermissionsMap(ctx context.Context, userID uint64) (map[string]bool, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT permission FROM user_permissions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms[p] = true
	}
	return perms, rows.Err()
}

func (r *UserRepository) FindIDsWithAnyPermission(ctx context.Context, permissions []string) ([]uint64, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT DISTINCT user_id FROM user_permissions WHERE permission = ANY($1)`, permissions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
