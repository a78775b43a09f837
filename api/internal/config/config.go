package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gorm.io/gorm"
)

type Config struct {
	DB *gorm.DB

	Prod_env bool

	// public base url of this deployment, used to synthesize default
	// callback urls (e.g. https://pay.example.com)
	PublicBaseUrl string `toml:"public_base_url"`

	PrivateKey string `toml:"private_key"`

	Daraja struct {
		// sandbox / live default for new credentials
		Environment string `toml:"environment"`
		// overrides both provider hosts, tests point this at a local server
		BaseUrlOverride string        `toml:"base_url_override"`
		Timeout         time.Duration `toml:"timeout"`
		TestPhone       string        `toml:"test_phone"`
		TestAmount      int64         `toml:"test_amount"`
	} `toml:"daraja"`

	Testing struct {
		Enabled bool
	} `toml:"testing"`

	Postgres struct {
		Host     string
		User     string
		Password string
		Db_name  string
		Port     uint16
		Ssl_mode string
	}

	Redis struct {
		Enabled  bool
		Addr     string
		Db       int
		Password string `toml:"-"` // read from SECRETS
	}

	Api struct {
		Ipv4  string
		Proto string
	} `toml:"pesa_web"`
}

func ReadConfig() *Config {
	byte_config, err := os.ReadFile(os.Getenv("CONFIG"))
	if err != nil {
		panic(err)
	}

	var config Config
	_, err = toml.Decode(string(byte_config), &config)
	if err != nil {
		panic(err)
	}

	if config.Daraja.Timeout == 0 {
		config.Daraja.Timeout = 10 * time.Second
	}
	if config.Daraja.TestPhone == "" {
		config.Daraja.TestPhone = "254708374149" // provider sandbox msisdn
	}
	if config.Daraja.TestAmount == 0 {
		config.Daraja.TestAmount = 1
	}

	config.PublicBaseUrl = strings.TrimSuffix(config.PublicBaseUrl, "/")

	if config.Redis.Enabled {
		pass, err := os.ReadFile(os.Getenv("SECRETS") + "/redis-password.txt")
		if err != nil {
			fmt.Println("no redis password secret, connecting without auth")
		} else {
			config.Redis.Password = strings.TrimSpace(string(pass))
		}
	}

	if config.Prod_env && config.Testing.Enabled {
		panic("cannot use testing in prod")
	}

	if config.Prod_env && config.Daraja.BaseUrlOverride != "" {
		panic("cannot override daraja base url in prod")
	}

	return &config
}

func (c *Config) CallbackUrlFor() string {
	return c.PublicBaseUrl + "/v1/mpesa/callback"
}
