package token

// These variables exist so tests can swap the JWT functions.
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)
