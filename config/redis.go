package config

// RedisConfig contains Redis connection settings for the server-side session
// backend. Only consulted when SESSION_BACKEND=redis.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
