// File: internal/domain/message.go
package domain

import "time"

// Role identifies who authored a message. Business logic compares Role
// values, never raw strings; the mapping to the wire roles of the
// generation API ("user"/"model") happens once, in ModelRole.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ModelRole maps a persisted role to the role name the generation API expects.
func (r Role) ModelRole() string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}

// Valid reports whether the role is one of the persisted variants.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents a single message within a chat. Messages are immutable
// once written and ordered by creation timestamp within their chat.
type Message struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index"` // The ID of the chat this message belongs to
	Role      Role      `json:"role" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
