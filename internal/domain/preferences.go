package domain

// Session is the signed-in account as seen by the storefront.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Token       string `json:"token"`
}

// Profile carries the optional registration fields.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// Sanitized returns the profile with every field passed through Sanitize.
func (p Profile) Sanitized() Profile {
	return Profile{
		FirstName: Sanitize(p.FirstName),
		LastName:  Sanitize(p.LastName),
		Phone:     Sanitize(p.Phone),
	}
}

// DisplayName joins first and last name.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
