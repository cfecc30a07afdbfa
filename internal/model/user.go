package model

import "time"

// User represents an application user record as stored in the
// `usuarios` table.  Each field corresponds to a column in the
// database.  The json tags are omitted here because these structs are
// primarily used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.  The Perfil
// field carries the user's role as a lowercase string: emissor,
// representante, transportador or admin.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Nome      – full name.
//  Login     – unique login name.
//  SenhaHash – bcrypt hashed password.
//  Perfil    – role of the user (emissor, representante, transportador, admin).
//  CPF       – document number (nullable).
//  Barco     – boat name for carriers (nullable).
//  SetorID   – sector the user belongs to (nullable).
//  Ativo     – whether the account is active.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    // usuarios.id
	Nome      string    // usuarios.nome
	Login     string    // usuarios.login
	SenhaHash string    // usuarios.senha_hash
	Perfil    string    // usuarios.perfil
	CPF       *string   // usuarios.cpf (nullable)
	Barco     *string   // usuarios.barco (nullable)
	SetorID   *uint64   // usuarios.setor_id (nullable)
	Ativo     bool      // usuarios.ativo
	CreatedAt time.Time // usuarios.created_at
	UpdatedAt time.Time // usuarios.updated_at
}

// Sector represents a row in the `setores` table.  Requisitions and
// users reference it via setor_id; its name is denormalized into
// requisition detail responses.
//
// Fields:
//  ID   – numeric identifier of the sector.
//  Nome – sector name.
type Sector struct {
	ID   uint64 // setores.id
	Nome string // setores.nome
}

// User roles as stored in usuarios.perfil.
const (
	PerfilEmissor       = "emissor"
	PerfilRepresentante = "representante"
	PerfilTransportador = "transportador"
	PerfilAdmin         = "admin"
)
