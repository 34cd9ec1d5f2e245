package models

// UserSession identifies the signed-in user.
type UserSession struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
	Name   string `json:"name,omitempty"`
}

// Valid reports whether the fields required to act as a session are present.
func (s UserSession) Valid() bool {
	return s.Token != "" && s.UserID != "" && s.PlanID != ""
}

// UserData is the serialized profile blob written by the login callback.
// Only plan_id is read back.
type UserData struct {
	ID     ID     `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	PlanID ID     `json:"plan_id,omitempty"`
}

// Conversation is an entry of the conversations blob.
type Conversation struct {
	ID        ID     `json:"id"`
	Title     string `json:"title,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
