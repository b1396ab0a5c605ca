package suppliers

// Supplier represents a goods supplier.
type Supplier struct {
	ID            int64  `json:"id"`
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	Email         string `json:"email" validate:"omitempty,email,max=255"`
}
