package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token          string
		AdminIDs       []int64 `mapstructure:"admin_ids"`
		ManagerContact string  `mapstructure:"manager_contact"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Orders struct {
		GraceWindow    time.Duration `mapstructure:"grace_window"`
		SweepInterval  time.Duration `mapstructure:"sweep_interval"`
		BoostAmountRUB int64         `mapstructure:"boost_amount_rub"`
	} `mapstructure:"orders"`

	Currency struct {
		USDRate float64 `mapstructure:"usd_rate"`
	} `mapstructure:"currency"`
}

func Load(path string) (Config, error) {
	// .env рядом с бинарём (токен и DSN удобно держать вне yaml)
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("orders.grace_window", "15m")
	v.SetDefault("orders.sweep_interval", "5m")
	v.SetDefault("orders.boost_amount_rub", 5000)
	v.SetDefault("currency.usd_rate", 95)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
