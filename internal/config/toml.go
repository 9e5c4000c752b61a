// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/mcdash/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API         APIConfig         `toml:"api"`
	Dashboard   DashboardConfig   `toml:"dashboard"`
	Export      ExportConfig      `toml:"export"`
	Permissions PermissionsConfig `toml:"permissions"`
	Log         LogConfig         `toml:"log"`
}

// APIConfig maps backend connection settings.
type APIConfig struct {
	BaseURL *string `toml:"base-url"`
	Token   *string `toml:"token"`
	Timeout *string `toml:"timeout"`
}

// DashboardConfig maps list and display settings.
type DashboardConfig struct {
	LeadType     *string `toml:"lead-type"`
	PageSize     *int    `toml:"page-size"`
	CampaignSort *string `toml:"campaign-sort"`
	ContactSort  *string `toml:"contact-sort"`
	Locale       *string `toml:"locale"`
}

// ExportConfig maps CSV export settings.
type ExportConfig struct {
	Dir *string `toml:"dir"`
}

// PermissionsConfig maps the advisory permission flags. Unset flags are granted.
type PermissionsConfig struct {
	SyncContacts    *bool `toml:"email_sync_contacts"`
	SyncCampaigns   *bool `toml:"email_sync_campaigns"`
	ViewCampaign    *bool `toml:"email_view_campaign"`
	ArchiveCampaign *bool `toml:"email_archive_campaign"`
	ExportCSV       *bool `toml:"email_export_csv"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// TimeoutDuration parses the configured timeout. It returns 0 when unset.
func (c APIConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == nil || *c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api timeout %q: %w", *c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid api timeout %q: must not be negative", *c.Timeout)
	}
	return d, nil
}

// Resolve returns the permission set with unset flags granted.
func (c PermissionsConfig) Resolve() model.Permissions {
	p := model.AllPermissions()
	set := func(target *bool, value *bool) {
		if value != nil {
			*target = *value
		}
	}
	set(&p.SyncContacts, c.SyncContacts)
	set(&p.SyncCampaigns, c.SyncCampaigns)
	set(&p.ViewCampaign, c.ViewCampaign)
	set(&p.ArchiveCampaign, c.ArchiveCampaign)
	set(&p.ExportCSV, c.ExportCSV)
	return p
}
