package model

import "time"

// User represents an application account as stored in the `users`
// table.  Identity fields beyond credentials live in Profile; the two
// are created together at registration.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  Email        – contact email (may be empty).
//  RealName     – verified real name from the whitelist.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	RealName     string    // users.real_name
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Profile extends a User with role and institutional identity.  One
// profile per account; (ExternalID, Role) is unique so a student or
// staff number can back at most one account per role.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owning account.
//  Role       – closed role enumeration.
//  ExternalID – student or staff number.
//  Department – department or class.
type Profile struct {
	ID         uint64 // profiles.id
	UserID     uint64 // profiles.user_id
	Role       Role   // profiles.role
	ExternalID string // profiles.external_id
	Department string // profiles.department
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only
// the SHA-256 hash of the token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
