package domain

// User is a stored account record. The JSON shape mirrors the users
// document, where records are keyed by email.
type User struct {
	PasswordHash string `json:"password_hash"`
	IsAdmin      bool   `json:"is_admin"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	CreatedDate  string `json:"created_date"`
}

// UserDirectory is the whole users collection, keyed by email.
// Email matching is exact-case at login; duplicate checks at creation
// are case-insensitive.
type UserDirectory map[string]User

// FullName joins first and last name. Falling back to the email is
// left to callers that have it at hand.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
