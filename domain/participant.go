package domain

// Profile carries the display fields of a user, resolved through the
// profile collaborator. It is a projection, never authoritative state.
type Profile struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// Participant is a (user identity, role) pair embedded in a conversation.
// The Profile pointer is only set when display fields have been expanded;
// identity comparisons must always go through ID so that expanded and
// bare participants compare equal.
type Participant struct {
	UserID  string   `json:"user_id"`
	Role    Role     `json:"role"`
	Profile *Profile `json:"profile,omitempty"`
}

// ID returns the stable identifier regardless of expansion state.
func (p Participant) ID() string {
	return p.UserID
}

// Is reports whether the participant refers to the given user.
func (p Participant) Is(userID string) bool {
	return p.UserID == userID
}
