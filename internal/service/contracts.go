package service

// TokenParser resolves a session token to the caller it was issued for.
type TokenParser interface {
	ParseToken(token string) (Actor, error)
}

var _ TokenParser = (*AuthService)(nil)
