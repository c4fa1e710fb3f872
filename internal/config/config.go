package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"

	"github.com/ittop-club/secret-santa-bot/internal/messages"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	SQLite   *SQLiteConfig   `mapstructure:"sqlite"`
	Bot      *BotConfig      `mapstructure:"bot"`
	Game     *GameConfig     `mapstructure:"game"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	BaseURL            string   `mapstructure:"base_url"`
	Port               string   `mapstructure:"port"`
	AdminToken         string   `mapstructure:"admin_token"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// SQLiteConfig is the zero-infrastructure storage flavour for local runs.
// It is used only when no Postgres connection is configured.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type BotConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

// Date is a calendar date in config; scheduling granularity is whole days.
type Date struct {
	Year  int `mapstructure:"year"`
	Month int `mapstructure:"month"`
	Day   int `mapstructure:"day"`
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

type GameConfig struct {
	DrawDate     Date    `mapstructure:"draw_date"`
	RevealDate   Date    `mapstructure:"reveal_date"`
	GiftDeadline Date    `mapstructure:"gift_deadline"`
	GiftBudget   string  `mapstructure:"gift_budget"`
	AdminIDs     []int64 `mapstructure:"admin_ids"`
}

// Year is the period one draw's assignments are scoped to.
func (g GameConfig) Year() int {
	return g.DrawDate.Year
}

func (g GameConfig) IsAdmin(userID int64) bool {
	for _, id := range g.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func (g GameConfig) Info() messages.GameInfo {
	return messages.GameInfo{
		DrawDate:     g.DrawDate.Time(),
		RevealDate:   g.RevealDate.Time(),
		GiftDeadline: g.GiftDeadline.Time(),
		GiftBudget:   g.GiftBudget,
	}
}

func Load(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)

	viper.AutomaticEnv()
	_ = viper.BindEnv("bot.token", "BOT_TOKEN")
	_ = viper.BindEnv("api.admin_token", "ADMIN_TOKEN")
	_ = viper.BindEnv("api.port", "PORT")
	_ = viper.BindEnv("postgres.host", "POSTGRES_HOST")
	_ = viper.BindEnv("postgres.port", "POSTGRES_PORT")
	_ = viper.BindEnv("postgres.user", "POSTGRES_USER")
	_ = viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	_ = viper.BindEnv("postgres.db", "POSTGRES_DB")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	var conf AppConfig
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return &conf, nil
}

func (c *AppConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
		validation.Field(&c.Game, validation.Required),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(c.API,
		validation.Field(&c.API.Environment, validation.Required, validation.In("development", "production")),
		validation.Field(&c.API.Port, validation.Required),
	); err != nil {
		return err
	}

	return validation.ValidateStruct(c.Game,
		validation.Field(&c.Game.DrawDate, validation.By(validDate)),
		validation.Field(&c.Game.RevealDate, validation.By(validDate)),
		validation.Field(&c.Game.GiftDeadline, validation.By(validDate)),
		validation.Field(&c.Game.GiftBudget, validation.Required),
	)
}

func validDate(value interface{}) error {
	d, ok := value.(Date)
	if !ok {
		return fmt.Errorf("not a date")
	}
	if d.IsZero() {
		return fmt.Errorf("is required")
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return fmt.Errorf("%d-%d-%d is not a valid calendar date", d.Year, d.Month, d.Day)
	}

	return nil
}
