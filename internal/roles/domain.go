package roles

// Role is one of the seeded access roles.
type Role struct {
	Code        string   `json:"code"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}
