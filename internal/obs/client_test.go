package obs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChallengeResponse(t *testing.T) {
	// Vectors follow the obs-websocket v4 scheme:
	// base64(sha256(base64(sha256(password+salt)) + challenge)).
	assert.Equal(t,
		"3MHIZ8hJthK1iEaJdqaL51vephcXwZgzHAAopeTI/uw=",
		challengeResponse("supersecret", "saltsaltsalt", "challengechallenge"),
	)
	assert.Equal(t,
		"5fmcrqR0I7snYOpUX/Ac22UdSA81TwCyHqCr6eFQyyI=",
		challengeResponse("", "salt", "challenge"),
	)
}

func TestChallengeResponseDependsOnEveryInput(t *testing.T) {
	base := challengeResponse("password", "salt", "challenge")
	assert.NotEqual(t, base, challengeResponse("password2", "salt", "challenge"))
	assert.NotEqual(t, base, challengeResponse("password", "salt2", "challenge"))
	assert.NotEqual(t, base, challengeResponse("password", "salt", "challenge2"))
}
