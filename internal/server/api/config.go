package api

import "time"

// ServerConfig represents the serve subcommand configuration.
type ServerConfig struct {
	Addr            string        `help:"HTTP listen address" default:":3000" env:"GENERAPI_API_ADDR"`
	ReadTimeout     time.Duration `help:"Maximum duration for reading a request" default:"30s" env:"GENERAPI_API_READ_TIMEOUT"`
	WriteTimeout    time.Duration `help:"Maximum duration before timing out writes of a response" default:"60s" env:"GENERAPI_API_WRITE_TIMEOUT"`
	MaxBodyBytes    int64         `help:"Maximum accepted request body size in bytes" default:"8388608" env:"GENERAPI_API_MAX_BODY_BYTES"`
	AllowOrigins    []string      `help:"CORS allowed origins" default:"*" env:"GENERAPI_API_ALLOW_ORIGINS"`
	GenerateRate    float64       `help:"Sustained scaffold generations per second per client (0 disables limiting)" default:"5" env:"GENERAPI_API_GENERATE_RATE"`
	GenerateBurst   int           `help:"Scaffold generation burst per client" default:"10" env:"GENERAPI_API_GENERATE_BURST"`
	GenerateTimeout time.Duration `help:"Deadline of one scaffold generation" default:"30s" env:"GENERAPI_API_GENERATE_TIMEOUT"`
	Workers         int           `help:"Render workers per generation (0 uses one per CPU)" default:"0" env:"GENERAPI_API_WORKERS"`
	ShutdownTimeout time.Duration `kong:"-"`
}
