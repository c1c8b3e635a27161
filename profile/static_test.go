package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tutor-chat/domain"
)

func Test_Static_Resolve(t *testing.T) {
	req := require.New(t)
	resolver := NewStatic(map[string]domain.Profile{
		"educator-7": {Name: "Ada", Username: "ada"},
	})

	p, ok := resolver.Resolve("educator-7")
	req.True(ok)
	req.Equal("Ada", p.Name)

	_, ok = resolver.Resolve("student-42")
	req.False(ok)
}

func Test_LoadFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "profiles.json")
	req.NoError(os.WriteFile(path, []byte(`{
		"student-42": {"name": "Sam", "username": "sam", "email": "sam@example.org"}
	}`), 0o644))

	resolver, err := LoadFile(path)
	req.NoError(err)

	p, ok := resolver.Resolve("student-42")
	req.True(ok)
	req.Equal("Sam", p.Name)
	req.Equal("sam@example.org", p.Email)
}

func Test_LoadFile_Rejects_Bad_JSON(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "profiles.json")
	req.NoError(os.WriteFile(path, []byte("not json"), 0o644))

	_, err := LoadFile(path)
	req.Error(err)
}
