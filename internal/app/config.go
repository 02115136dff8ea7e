package app

import (
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/config"
)

// LoadConfig loads application configuration.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}
