package domain

// User is the authenticated caller.
type User struct {
	ID string `json:"id"`
}
