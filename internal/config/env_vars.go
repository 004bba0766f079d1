package config

import "strings"

type EnvVars struct {
	AppName  string `env:"APP_NAME"           envDefault:"Lakehouse"`
	Env      string `env:"ENV"                envDefault:"DEV"`
	LogLevel string `env:"LAKEHOUSE_LOG_LEVEL" envDefault:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e *EnvVars) Sanitize() {
	if strings.TrimSpace(e.AppName) == "" {
		e.AppName = "Lakehouse"
	}
	e.Env = strings.ToUpper(strings.TrimSpace(e.Env))
	if e.Env == "" {
		e.Env = "DEV"
	}
	e.LogLevel = strings.ToLower(strings.TrimSpace(e.LogLevel))
	if e.LogLevel == "" {
		e.LogLevel = "info"
	}
}
