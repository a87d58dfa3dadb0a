package bridge

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

type Configuration struct {
	App struct {
		AccountId   string `toml:"account-id"`
		BridgeURL   string `toml:"bridge-url"`
		AccessToken string `toml:"access-token"`
	} `toml:"app"`
	Store struct {
		Driver string `toml:"driver"`
		Redis  string `toml:"redis"`
	} `toml:"store"`
	Group struct {
		GasBudget int `toml:"gas-budget"`
		Batch     int `toml:"batch"`
	} `toml:"group"`
}

func Setup(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Configuration
	err = toml.Unmarshal(data, &conf)
	if err != nil {
		return nil, err
	}
	if conf.App.AccountId == "" {
		return nil, fmt.Errorf("bridge: missing app.account-id in %s", path)
	}
	if conf.App.BridgeURL == "" {
		return nil, fmt.Errorf("bridge: missing app.bridge-url in %s", path)
	}
	return &conf, nil
}
