package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Both regular requesters and administrators live in
// the same table and are distinguished by the Role column.  The
// password is stored only as a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – either "user" or "admin".
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}

// Roles accepted in the users.role column and in JWT role claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
