package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host          string `yaml:"host" json:"host"`
	Port          int    `yaml:"port" json:"port"`
	Secret        string `yaml:"secret" json:"secret"`
	TokenExpireHr int    `yaml:"token_expire_hr" json:"token_expire_hr"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "toughpos",
		Location: "Asia/Jakarta",
		Workdir:  "/var/toughpos",
		Debug:    true,
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		Secret:        "9b6de5cc-0731-4bf1-xpos-0f568ac9da37",
		TokenExpireHr: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "toughpos",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/toughpos/toughpos.log",
	},
}

func setEnvStrValue(env string, val *string) {
	if v := os.Getenv(env); v != "" {
		*val = v
	}
}

func setEnvIntValue(env string, val *int) {
	if v := os.Getenv(env); v != "" {
		*val = cast.ToInt(v)
	}
}

func setEnvBoolValue(env string, val *bool) {
	if v := os.Getenv(env); v != "" {
		*val = cast.ToBool(v)
	}
}

// LoadConfig reads the YAML configuration file and applies TOUGHPOS_*
// environment overrides. A missing or empty path yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
			}
		}
	}

	setEnvStrValue("TOUGHPOS_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvStrValue("TOUGHPOS_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("TOUGHPOS_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvStrValue("TOUGHPOS_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("TOUGHPOS_WEB_PORT", &cfg.Web.Port)
	setEnvStrValue("TOUGHPOS_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("TOUGHPOS_WEB_TOKEN_EXPIRE_HR", &cfg.Web.TokenExpireHr)

	setEnvStrValue("TOUGHPOS_DB_TYPE", &cfg.Database.Type)
	setEnvStrValue("TOUGHPOS_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("TOUGHPOS_DB_PORT", &cfg.Database.Port)
	setEnvStrValue("TOUGHPOS_DB_NAME", &cfg.Database.Name)
	setEnvStrValue("TOUGHPOS_DB_USER", &cfg.Database.User)
	setEnvStrValue("TOUGHPOS_DB_PASSWD", &cfg.Database.Passwd)

	setEnvStrValue("TOUGHPOS_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("TOUGHPOS_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvStrValue("TOUGHPOS_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}
