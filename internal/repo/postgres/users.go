package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, age, password, tokens, avatar, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  observability.DBObserver
}

func NewUsersRepo(pool *pgxpool.Pool, obs observability.DBObserver) *UsersRepo {
	if obs == nil {
		obs = observability.NopDB{}
	}
	return &UsersRepo{pool: pool, obs: obs}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Tokens == nil {
		u.Tokens = []string{}
	}

	err := r.obs.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users(id, name, email, age, password, tokens, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Name, u.Email, u.Age, u.Password, u.Tokens, u.CreatedAt, u.UpdatedAt)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}
	return r.queryOne(ctx, "users.get_by_id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.queryOne(ctx, "users.get_by_email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) GetByToken(ctx context.Context, id, token string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}
	return r.queryOne(ctx, "users.get_by_token",
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND $2 = ANY(tokens)`, id, token)
}

func (r *UsersRepo) Update(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}

	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.Password != nil {
		add("password", *changes.Password)
	}
	if changes.Age != nil {
		add("age", *changes.Age)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))

	u, err := r.queryOne(ctx, "users.update", query, args...)
	if err != nil && isUniqueViolation(err) {
		return user.User{}, user.ErrEmailTaken
	}
	return u, err
}

func (r *UsersRepo) PushToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, "users.push_token",
		`UPDATE users SET tokens = array_append(tokens, $2), updated_at = now() WHERE id = $1`, id, token)
}

func (r *UsersRepo) PullToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, "users.pull_token",
		`UPDATE users SET tokens = array_remove(tokens, $2), updated_at = now() WHERE id = $1`, id, token)
}

func (r *UsersRepo) ClearTokens(ctx context.Context, id string) error {
	return r.exec(ctx, "users.clear_tokens",
		`UPDATE users SET tokens = '{}', updated_at = now() WHERE id = $1`, id)
}

func (r *UsersRepo) SetAvatar(ctx context.Context, id string, png []byte) error {
	return r.exec(ctx, "users.set_avatar",
		`UPDATE users SET avatar = $2, updated_at = now() WHERE id = $1`, id, png)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "users.delete", `DELETE FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) queryOne(ctx context.Context, op, query string, args ...any) (user.User, error) {
	var u user.User
	err := r.obs.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Age,
			&u.Password,
			&u.Tokens,
			&u.Avatar,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// exec runs a single-row statement keyed by id; zero affected rows means
// the user does not exist.
func (r *UsersRepo) exec(ctx context.Context, op, query string, id string, args ...any) error {
	if !validID(id) {
		return user.ErrNotFound
	}

	var tag pgconn.CommandTag
	err := r.obs.ObserveDB(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx, query, append([]any{id}, args...)...)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ids are uuid columns; anything else would be a cast error rather than a miss
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
