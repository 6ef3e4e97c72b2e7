package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Token_Roundtrip(t *testing.T) {
	r := require.New(t)

	token, err := GenerateToken("company-7", "宏达五金", "https://cdn.example.com/a.png")
	r.NoError(err)
	r.NotEmpty(token)

	claims, err := ValidateToken(token)
	r.NoError(err)
	r.Equal("company-7", claims.UserID)
	r.Equal("宏达五金", claims.Name)
	r.Equal("https://cdn.example.com/a.png", claims.AvatarURL)
}

func Test_ValidateToken_Garbage(t *testing.T) {
	r := require.New(t)

	_, err := ValidateToken("not-a-token")
	r.Error(err)
}

func Test_ExtractSignature(t *testing.T) {
	r := require.New(t)

	token, err := GenerateToken("company-7", "宏达五金", "")
	r.NoError(err)

	sig, err := ExtractSignature(token)
	r.NoError(err)
	r.NotEmpty(sig)

	_, err = ExtractSignature("one.two")
	r.Error(err)
}
