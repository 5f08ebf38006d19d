// Package auth provides account management and token authentication for
// the API.
//
// Accounts are identified by email. A successful login returns a short-lived
// access token and a longer-lived refresh token, both HS256 JWTs carrying a
// token_type claim. Refresh tokens are single use: refreshing revokes the
// presented token and issues a new pair, and logout revokes it outright.
// Revoked token IDs are stored until their expiry and purged by the
// maintenance task.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<hex>           # Auto-generated if empty (tokens die on restart)
//	AUTH_ACCESS_TOKEN_TTL=5m
//	AUTH_REFRESH_TOKEN_TTL=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_MAX_LOGIN_ATTEMPTS=5       # Per client IP + email
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	tokens := auth.NewTokenIssuer(secret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
//	authService := auth.NewService(userRepo, tokenRepo, tokens, limiter, auditService, cfg.Auth)
//	api.Use(auth.NewMiddleware(authService).RequireAuth())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
