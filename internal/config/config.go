package config

import (
	"fmt"
	"time"

	"mafia-be/internal/service/game"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string      `mapstructure:"host"`
	Port     int         `mapstructure:"port"`
	LogLevel string      `mapstructure:"log_level"`
	Rules    RulesConfig `mapstructure:"rules"`
}

// RulesConfig 是默认规则的配置覆盖，零值字段保持引擎默认
type RulesConfig struct {
	InitialPhase     string `mapstructure:"initial_phase"`
	LobbySeconds     int    `mapstructure:"lobby_seconds"`
	MorningSeconds   int    `mapstructure:"morning_seconds"`
	VoteSeconds      int    `mapstructure:"vote_seconds"`
	LastWordsSeconds int    `mapstructure:"last_words_seconds"`
	EveningSeconds   int    `mapstructure:"evening_seconds"`
	NightSeconds     int    `mapstructure:"night_seconds"`
	VoteMajority     *bool  `mapstructure:"vote_majority"`
}

func (rc RulesConfig) Ruleset() game.Ruleset {
	rules := game.DefaultRuleset()

	if rc.InitialPhase != "" {
		rules.InitialPhase = rc.InitialPhase
	}
	if rc.LobbySeconds > 0 {
		rules.LobbyDuration = time.Duration(rc.LobbySeconds) * time.Second
	}
	if rc.MorningSeconds > 0 {
		rules.MorningDuration = time.Duration(rc.MorningSeconds) * time.Second
	}
	if rc.VoteSeconds > 0 {
		rules.VoteDuration = time.Duration(rc.VoteSeconds) * time.Second
	}
	if rc.LastWordsSeconds > 0 {
		rules.LastWordsDuration = time.Duration(rc.LastWordsSeconds) * time.Second
	}
	if rc.EveningSeconds > 0 {
		rules.EveningDuration = time.Duration(rc.EveningSeconds) * time.Second
	}
	if rc.NightSeconds > 0 {
		rules.NightDuration = time.Duration(rc.NightSeconds) * time.Second
	}
	if rc.VoteMajority != nil {
		rules.VoteMajority = *rc.VoteMajority
	}

	return rules
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func InitConfig() *AppConfig {
	v := viper.New()

	v.SetConfigFile("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("解析配置失败: %w", err))
	}

	return &config
}
