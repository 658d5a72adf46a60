package service

import "time"

type Config struct {
	Secret      string        `toml:"secret"`
	TokenTTL    time.Duration `toml:"token_ttl"`
	TokenHeader string        `toml:"token_header"`
	BcryptCost  int           `toml:"bcrypt_cost"`
}
