package token

// IsExpired makes an optimistic, client-side judgement on whether rawToken
// has passed its claimed expiry. Anything that cannot be decoded, or that
// carries no numeric exp claim, counts as expired. It never panics.
func IsExpired(rawToken string) (expired bool) {
	defer func() {
		if r := recover(); r != nil {
			expired = true
		}
	}()

	claims, err := Inspect(rawToken)
	if err != nil {
		return true
	}
	return claims.Expired()
}
