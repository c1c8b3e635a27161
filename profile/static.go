// Package profile provides the reference-expansion collaborator: a lookup
// from user ID to display fields. The chat core treats profiles as a
// projection; a miss simply leaves the bare identifier in place.
package profile

import (
	"encoding/json"
	"os"

	"tutor-chat/domain"
)

// Static resolves profiles from an in-memory table. Safe for concurrent
// reads; the table is fixed after construction.
type Static struct {
	users map[string]domain.Profile
}

func NewStatic(users map[string]domain.Profile) *Static {
	if users == nil {
		users = make(map[string]domain.Profile)
	}
	return &Static{users: users}
}

// LoadFile builds a resolver from a JSON file of the form
// {"<user_id>": {"name": ..., "username": ..., ...}, ...}.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var users map[string]domain.Profile
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return NewStatic(users), nil
}

func (s *Static) Resolve(userID string) (domain.Profile, bool) {
	p, ok := s.users[userID]
	return p, ok
}
