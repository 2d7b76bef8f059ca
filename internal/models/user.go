package models

// User represents a registered user. Credentials are stored as-is;
// this service does not carry an authentication security model.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
