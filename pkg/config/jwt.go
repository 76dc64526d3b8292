package config

// JWTConfig holds token signing configuration. The defaults are safe for
// local development only; production deployments must override the secrets.
type JWTConfig struct {
	Secret             string `env:"JWT_SECRET" env-default:"dev-secret"`
	RefreshSecret      string `env:"JWT_REFRESH_SECRET" env-default:""`
	AccessTokenExpiry  string `env:"ACCESS_TOKEN_EXPIRY" env-default:"1h"`
	RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" env-default:"168h"`
	Issuer             string `env:"JWT_ISSUER" env-default:"simple-tasks"`
	Audience           string `env:"JWT_AUDIENCE" env-default:"simple-tasks"`
}
