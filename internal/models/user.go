package models

// AnonymousUserID owns every reminder when authentication is disabled
const AnonymousUserID = "default_user"

// User is the authenticated caller of a request
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// AnonymousUser returns the user requests are attributed to when no token is configured
func AnonymousUser() *User {
	return &User{ID: AnonymousUserID, Anonymous: true}
}
