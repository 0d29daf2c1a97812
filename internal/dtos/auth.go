// File: internal/dtos/auth.go
package dtos

// RegisterRequest creates an account. The emergency contact is optional
// but strongly encouraged; without it crisis alerts cannot be delivered.
type RegisterRequest struct {
	Username              string `json:"username"`
	Password              string `json:"password"`
	EmergencyContactName  string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string `json:"emergencyContactPhone,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

// ProfileResponse never exposes the password hash.
type ProfileResponse struct {
	ID                    uint   `json:"id"`
	Username              string `json:"username"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
}

type UpdateEmergencyContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
