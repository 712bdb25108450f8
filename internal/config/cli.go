// Package config holds the command line surface of generapi. Every flag can also come
// from the environment or from a JSON, YAML or TOML configuration file.
package config

import "github.com/generapi/generapi/internal/cmd"

type LogConfig struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"GENERAPI_LOG_LEVEL"`
	Format  string `help:"Log format: auto picks text on a terminal and JSON otherwise" default:"auto" enum:"auto,text,json" env:"GENERAPI_LOG_FORMAT"`
	File    string `help:"Also write logs to this file" type:"path" env:"GENERAPI_LOG_FILE"`
	RawFile string `help:"Dump every rendered file to this file" type:"path" env:"GENERAPI_LOG_RAW_FILE"`
}

type CLI struct {
	ConfigFile string    `name:"config" help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"GENERAPI_CONFIG"`
	Log        LogConfig `embed:"" prefix:"log."`

	Serve    cmd.Serve         `cmd:"" help:"Run the HTTP API"`
	Generate cmd.Generate      `cmd:"" help:"Generate a Quarkus service scaffold from an OpenAPI document"`
	Render   cmd.Render        `cmd:"" help:"Render a single blueprint against a context file"`
	List     cmd.List          `cmd:"" help:"List the blueprints of the family"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
	Version  cmd.Version       `cmd:"" help:"Print the version"`
}
