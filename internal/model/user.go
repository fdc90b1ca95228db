package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository and service
// layers; handlers define separate response types with appropriate
// JSON tags so the password hash can never leak into a response.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, stored as submitted (trimmed only).
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name, trimmed, at least two characters.
//  LastName     – family name, trimmed, at least two characters.
//  IsActive     – whether the account may log in.
//  IsVerified   – email verification flag; stored but unused downstream.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	IsActive     bool      // users.is_active
	IsVerified   bool      // users.is_verified
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
