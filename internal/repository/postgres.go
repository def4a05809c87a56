package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexindevs/orgbase/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository         = (*PostgresUserRepo)(nil)
	_ OrganisationRepository = (*PostgresOrgRepo)(nil)
	_ RegistrationStore      = (*PostgresRegistrationStore)(nil)
)

// storeTimeout bounds every store call so a wedged database surfaces as a
// transient failure instead of hanging the request.
const storeTimeout = 5 * time.Second

const uniqueViolation = "23505"

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const userColumns = `user_id, first_name, last_name, email, password_hash, phone, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// PostgresUserRepo implements UserRepository over pgx.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapError("get user by email", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, userID string) (domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapError("get user by id", err)
	}
	return user, nil
}

const insertUserSQL = `INSERT INTO users (user_id, first_name, last_name, email, password_hash, phone)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, insertUserSQL,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Phone)
	created, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapError("create user", err)
	}
	return created, nil
}

const orgColumns = `org_id, name, description, created_at, updated_at`

func scanOrg(row pgx.Row) (domain.Organisation, error) {
	var o domain.Organisation
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// PostgresOrgRepo implements OrganisationRepository over pgx.
type PostgresOrgRepo struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewPostgresOrgRepo(pool *pgxpool.Pool, node *snowflake.Node) *PostgresOrgRepo {
	return &PostgresOrgRepo{db: pool, node: node}
}

func (r *PostgresOrgRepo) GetByID(ctx context.Context, orgID string) (domain.Organisation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM organisations WHERE org_id = $1`, orgID)
	org, err := scanOrg(row)
	if err != nil {
		return domain.Organisation{}, mapError("get organisation", err)
	}
	return org, nil
}

func (r *PostgresOrgRepo) ListByUser(ctx context.Context, userID string) ([]domain.Organisation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
SELECT o.org_id, o.name, o.description, o.created_at, o.updated_at
FROM organisations o
JOIN organisation_members m ON m.org_id = o.org_id
WHERE m.user_id = $1
ORDER BY m.created_at`, userID)
	if err != nil {
		return nil, mapError("list organisations by user", err)
	}
	defer rows.Close()

	var orgs []domain.Organisation
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, mapError("list organisations by user", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list organisations by user", err)
	}
	return orgs, nil
}

func (r *PostgresOrgRepo) Members(ctx context.Context, orgID string) ([]domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
SELECT u.user_id, u.first_name, u.last_name, u.email, u.password_hash, u.phone, u.created_at, u.updated_at
FROM users u
JOIN organisation_members m ON m.user_id = u.user_id
WHERE m.org_id = $1
ORDER BY m.created_at`, orgID)
	if err != nil {
		return nil, mapError("list organisation members", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError("list organisation members", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list organisation members", err)
	}
	return users, nil
}

const insertOrgSQL = `INSERT INTO organisations (org_id, name, description)
VALUES ($1, $2, $3)
RETURNING ` + orgColumns

const insertMemberSQL = `INSERT INTO organisation_members (id, org_id, user_id)
VALUES ($1, $2, $3)`

func (r *PostgresOrgRepo) Create(ctx context.Context, org domain.Organisation, creatorID string) (domain.Organisation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Organisation{}, mapError("create organisation", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, insertOrgSQL, org.ID, org.Name, org.Description)
	created, err := scanOrg(row)
	if err != nil {
		return domain.Organisation{}, mapError("create organisation", err)
	}

	if _, err := tx.Exec(ctx, insertMemberSQL, r.node.Generate().Int64(), created.ID, creatorID); err != nil {
		return domain.Organisation{}, mapError("create organisation membership", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Organisation{}, mapError("create organisation", err)
	}
	return created, nil
}

func (r *PostgresOrgRepo) AddMember(ctx context.Context, orgID, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Exec(ctx, insertMemberSQL, r.node.Generate().Int64(), orgID, userID); err != nil {
		return mapError("add member", err)
	}
	return nil
}

const updateOrgSQL = `UPDATE organisations
SET name = $2, description = $3, updated_at = now()
WHERE org_id = $1
RETURNING ` + orgColumns

func (r *PostgresOrgRepo) Update(ctx context.Context, org domain.Organisation) (domain.Organisation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, updateOrgSQL, org.ID, org.Name, org.Description)
	updated, err := scanOrg(row)
	if err != nil {
		return domain.Organisation{}, mapError("update organisation", err)
	}
	return updated, nil
}

func (r *PostgresOrgRepo) Delete(ctx context.Context, orgID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM organisations WHERE org_id = $1`, orgID)
	if err != nil {
		return mapError("delete organisation", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete organisation: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresOrgRepo) RemoveMember(ctx context.Context, orgID, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM organisation_members WHERE org_id = $1 AND user_id = $2`, orgID, userID)
	if err != nil {
		return mapError("remove member", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("remove member: %w", domain.ErrNotFound)
	}
	return nil
}

// PostgresRegistrationStore creates user, default organisation, and
// membership atomically.
type PostgresRegistrationStore struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewPostgresRegistrationStore(pool *pgxpool.Pool, node *snowflake.Node) *PostgresRegistrationStore {
	return &PostgresRegistrationStore{db: pool, node: node}
}

func (r *PostgresRegistrationStore) CreateRegistration(ctx context.Context, user domain.User, org domain.Organisation) (domain.User, domain.Organisation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.User{}, domain.Organisation{}, mapError("register", err)
	}
	defer tx.Rollback(ctx)

	createdUser, err := scanUser(tx.QueryRow(ctx, insertUserSQL,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Phone))
	if err != nil {
		return domain.User{}, domain.Organisation{}, mapError("register user", err)
	}

	createdOrg, err := scanOrg(tx.QueryRow(ctx, insertOrgSQL, org.ID, org.Name, org.Description))
	if err != nil {
		return domain.User{}, domain.Organisation{}, mapError("register organisation", err)
	}

	if _, err := tx.Exec(ctx, insertMemberSQL, r.node.Generate().Int64(), createdOrg.ID, createdUser.ID); err != nil {
		return domain.User{}, domain.Organisation{}, mapError("register membership", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, domain.Organisation{}, mapError("register", err)
	}
	return createdUser, createdOrg, nil
}
