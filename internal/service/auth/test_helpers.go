package auth

import "time"

// NewTestJWTService constructs an hmacJWTService with an injectable clock
// for deterministic tests. The refresh lifetime is fixed at double the
// access lifetime, which is enough for the scenarios the tests cover.
func NewTestJWTService(
	secret string,
	tokenLifetime time.Duration,
	timeFunc func() time.Time,
) *hmacJWTService {
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        tokenLifetime,
		refreshTokenLifetime: 2 * tokenLifetime,
		timeFunc:             timeFunc,
		clockSkew:            0,
	}
}
