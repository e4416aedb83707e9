package models

import "strings"

// User represents a platform user as returned by the admin users endpoint.
type User struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	First     string `json:"first"`
	LastName  string `json:"lastName"`
	Last      string `json:"last"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// FullName composes the user's name from first/last variants, falling back
// to the plain name field.
func (u User) FullName() string {
	first := u.FirstName
	if first == "" {
		first = u.First
	}
	last := u.LastName
	if last == "" {
		last = u.Last
	}
	full := strings.TrimSpace(first + " " + last)
	if full != "" {
		return full
	}
	return u.Name
}

// Initials returns up to two initials for avatar rendering.
func (u User) Initials() string {
	var b strings.Builder
	if u.FirstName != "" {
		b.WriteString(u.FirstName[:1])
	}
	if u.LastName != "" {
		b.WriteString(u.LastName[:1])
	}
	if b.Len() == 0 && u.Name != "" {
		b.WriteString(u.Name[:1])
	}
	return strings.ToUpper(b.String())
}
