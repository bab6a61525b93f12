package config

type App struct {
	Port          string `env:"APP_PORT" default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	RedisAddr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" default:"0"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	AnalyticsURL  string `env:"ANALYTICS_URL"`
	Env           string `env:"APP_ENV" default:"dev"`
}
