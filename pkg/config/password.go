package config

// PasswordHashConfig holds the password hashing work factor. Higher cost
// means slower hashing and stronger brute-force resistance.
type PasswordHashConfig struct {
	Cost int `env:"PASSWORD_HASH_COST" env-default:"10"`
}
