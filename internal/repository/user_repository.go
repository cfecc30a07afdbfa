package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/prefborba/requisicoes-api/internal/model"
	"github.com/prefborba/requisicoes-api/internal/utils"
)

// UserRepo provides data access to the usuarios table.  Logins are
// unique case-insensitively; passwords are stored only as bcrypt
// hashes.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByLogin fetches an active user by login for credential checks.
// ErrNotFound is returned when no active row matches.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.TrimSpace(login)
	var u model.User
	var cpf, barco sql.NullString
	var setorID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nome, login, senha_hash, perfil, cpf, barco, setor_id, ativo, created_at, updated_at
		 FROM usuarios WHERE LOWER(login) = LOWER(?) AND ativo = 1 LIMIT 1`,
		login).Scan(&u.ID, &u.Nome, &u.Login, &u.SenhaHash, &u.Perfil, &cpf, &barco, &setorID, &u.Ativo, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	u.CPF = nullableStr(cpf)
	u.Barco = nullableStr(barco)
	if setorID.Valid {
		v := uint64(setorID.Int64)
		u.SetorID = &v
	}
	return u, nil
}

// UserRow is the JSON shape of directory listings.  The password hash
// is never exposed.
type UserRow struct {
	ID      uint64  `json:"id"`
	Nome    string  `json:"nome"`
	Login   string  `json:"login"`
	Perfil  string  `json:"perfil"`
	CPF     *string `json:"cpf"`
	Barco   *string `json:"barco"`
	SetorID *uint64 `json:"setor_id"`
	Ativo   bool    `json:"ativo"`
}

// List returns active users ordered by name, optionally filtered by
// perfil (case-insensitive).
func (r *UserRepo) List(ctx context.Context, perfil *string) ([]UserRow, error) {
	q := `SELECT id, nome, login, perfil, cpf, barco, setor_id, ativo
		  FROM usuarios
		  WHERE ativo = 1`
	args := make([]any, 0, 1)
	if perfil != nil {
		q += " AND LOWER(perfil) = LOWER(?)"
		args = append(args, *perfil)
	}
	q += " ORDER BY nome"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UserRow, 0)
	for rows.Next() {
		var u UserRow
		var cpf, barco sql.NullString
		var setorID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Nome, &u.Login, &u.Perfil, &cpf, &barco, &setorID, &u.Ativo); err != nil {
			return nil, err
		}
		u.CPF = nullableStr(cpf)
		u.Barco = nullableStr(barco)
		if setorID.Valid {
			v := uint64(setorID.Int64)
			u.SetorID = &v
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts an active user and returns its ID.  The login is
// checked first so a friendly ErrLoginExists can be returned; the
// unique index on login remains the backstop and a duplicate-key
// failure maps to the same error.
func (r *UserRepo) Create(ctx context.Context, nome, login, senha, perfil string, cpf, barco *string, setorID *uint64, cost int) (uint64, error) {
	login = strings.TrimSpace(login)
	var existing uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM usuarios WHERE LOWER(login) = LOWER(?) LIMIT 1`, login).Scan(&existing)
	if err == nil {
		return 0, ErrLoginExists
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	hash, err := utils.HashPassword(senha, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (nome, login, senha_hash, perfil, cpf, barco, setor_id, ativo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		nome, login, hash, perfil, cpf, barco, setorID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrLoginExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UserUpdate carries one optional field per updatable attribute.  Nil
// means "keep the stored value".  SenhaHash must already be hashed by
// the caller.
type UserUpdate struct {
	Nome      *string
	Login     *string
	Perfil    *string
	CPF       *string
	Barco     *string
	SetorID   *uint64
	SenhaHash *string
}

// Update applies a partial update as a single parameterized statement.
// ErrNotFound is returned when the id matches no row.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) error {
	const q = `UPDATE usuarios SET
				 nome       = COALESCE(?, nome),
				 login      = COALESCE(?, login),
				 perfil     = COALESCE(?, perfil),
				 cpf        = COALESCE(?, cpf),
				 barco      = COALESCE(?, barco),
				 setor_id   = COALESCE(?, setor_id),
				 senha_hash = COALESCE(?, senha_hash),
				 updated_at = NOW()
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		upd.Nome, upd.Login, upd.Perfil, upd.CPF, upd.Barco, upd.SetorID, upd.SenhaHash, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrLoginExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user.  ErrNotFound is returned when the id matches
// no row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usuarios WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
