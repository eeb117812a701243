package rfbauth

import (
	"crypto/des"
	"crypto/rand"
	"fmt"

	"github.com/candiedoperation/spifyrfb/internal/bitcodec"
)

// ChallengeSize is the length in bytes of the VNC-DES challenge and of
// the client's encrypted response.
const ChallengeSize = 16

// desBlockKey derives an 8-byte DES key from a plaintext password,
// applying RFB's historical per-byte bit-reversal quirk. Passwords
// shorter than 8 bytes are zero-padded; longer ones are truncated,
// matching the original VNC authentication scheme.
func desBlockKey(password string) []byte {
	key := make([]byte, des.BlockSize)
	copy(key, password)
	for i := range key {
		key[i] = bitcodec.ReverseByteBits(key[i])
	}
	return key
}

// NewChallenge returns ChallengeSize fresh random bytes to send to the
// client as the VNC-DES authentication challenge.
func NewChallenge() ([]byte, error) {
	challenge := make([]byte, ChallengeSize)
	if _, err := rand.Read(challenge); err != nil {
		return nil, fmt.Errorf("rfbauth: generate challenge: %w", err)
	}
	return challenge, nil
}

// VerifyResponse reports whether response is the correct DES-ECB
// encryption of challenge under the configured password: it decrypts
// each 8-byte block of response with the derived key and compares the
// result against challenge.
func VerifyResponse(password string, challenge, response []byte) (bool, error) {
	if len(challenge) != ChallengeSize || len(response) != ChallengeSize {
		return false, fmt.Errorf("rfbauth: challenge/response must be %d bytes", ChallengeSize)
	}

	block, err := des.NewCipher(desBlockKey(password))
	if err != nil {
		return false, fmt.Errorf("rfbauth: create cipher: %w", err)
	}

	decrypted := make([]byte, ChallengeSize)
	block.Decrypt(decrypted[0:8], response[0:8])
	block.Decrypt(decrypted[8:16], response[8:16])

	match := true
	for i := range challenge {
		if challenge[i] != decrypted[i] {
			match = false
		}
	}
	return match, nil
}
