package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []error{
		config.ErrConfigNotFound,
		config.ErrInvalidConfig,
		config.ErrDuplicateID,
		config.ErrMissingName,
		config.ErrMissingSecret,
		config.ErrInvalidBackend,
	}

	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := goerr.Wrap(sentinel, "outer", goerr.V(config.ConfigPathKey, "/tmp/x.toml"))
			gt.Bool(t, errors.Is(wrapped, sentinel)).True()

			for _, other := range sentinels {
				if other != sentinel {
					gt.Bool(t, errors.Is(wrapped, other)).False()
				}
			}
		})
	}
}
