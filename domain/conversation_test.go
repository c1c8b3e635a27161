package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_PairKey_Is_Order_Invariant(t *testing.T) {
	req := require.New(t)

	// Given a student and an educator
	student, educator := "student-42", "educator-7"

	// When building the pair key in both argument orders
	// Then both orders produce the same identity
	req.Equal(PairKey(student, educator), PairKey(educator, student))
	req.Equal("educator-7|student-42", PairKey(student, educator))
}

func Test_Conversation_Membership_Ignores_Profile_Expansion(t *testing.T) {
	req := require.New(t)

	conv := Conversation{
		ID:   "conv-1",
		Type: ConversationStudentEducator,
		Participants: []Participant{
			{UserID: "student-42", Role: RoleStudent},
			{UserID: "educator-7", Role: RoleEducator, Profile: &Profile{Name: "Ada"}},
		},
	}

	// Membership is decided on identifiers only, whether or not the
	// participant carries display fields.
	req.True(conv.IsParticipant("student-42"))
	req.True(conv.IsParticipant("educator-7"))
	req.False(conv.IsParticipant("stranger"))
}

func Test_Conversation_Counterpart(t *testing.T) {
	req := require.New(t)

	conv := Conversation{
		Participants: []Participant{
			{UserID: "student-42", Role: RoleStudent},
			{UserID: "educator-7", Role: RoleEducator},
		},
	}

	other, ok := conv.Counterpart("student-42")
	req.True(ok)
	req.Equal("educator-7", other.UserID)

	other, ok = conv.Counterpart("educator-7")
	req.True(ok)
	req.Equal("student-42", other.UserID)

	educator, ok := conv.ByRole(RoleEducator)
	req.True(ok)
	req.Equal("educator-7", educator.UserID)
}

func Test_KnownMessageType(t *testing.T) {
	req := require.New(t)

	req.True(KnownMessageType(MessageText))
	req.True(KnownMessageType(MessageImage))
	req.True(KnownMessageType(MessageFile))
	req.False(KnownMessageType("video"))
	req.False(KnownMessageType(""))
}
