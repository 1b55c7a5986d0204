package models

// Identity lives in Supabase; the only user attribute this service
// interprets locally is the app-level role carried in the token's
// app_metadata.
type UserRole string

const (
	RoleRegular UserRole = "user"
	RoleAdmin   UserRole = "admin"
)
