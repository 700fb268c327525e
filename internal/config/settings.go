package config

import (
	"slices"
	"time"
)

// CurrentVersion is the settings file format version
const CurrentVersion = 1

// MaxRecentParents bounds the recent parent record list
const MaxRecentParents = 10

// Defaults applied to missing settings
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultPageSize       = 10
	DefaultDateLayout     = "02.01.2006"
	DefaultTimeoutSeconds = 10
)

// Settings represents the entire user configuration file.
// Tokens are never stored here; they come from ORDERDESK_TOKEN.
type Settings struct {
	Version  int             `yaml:"version"`
	Platform *PlatformPrefs  `yaml:"platform,omitempty"`
	Wizard   *WizardPrefs    `yaml:"wizard,omitempty"`
	Viewer   *ViewerPrefs    `yaml:"viewer,omitempty"`
	Recent   []*RecentParent `yaml:"recent,omitempty"` // Most recent first
}

// PlatformPrefs describes how to reach the platform backend
type PlatformPrefs struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WizardPrefs configures the Order Wizard
type WizardPrefs struct {
	PageSize int `yaml:"page_size"`
}

// ViewerPrefs configures the Record Viewer
type ViewerPrefs struct {
	DateLayout string `yaml:"date_layout"` // Go reference layout
}

// RecentParent is a parent record an order was recently started from
type RecentParent struct {
	ID       string    `yaml:"id"`
	Label    string    `yaml:"label,omitempty"`
	LastUsed time.Time `yaml:"last_used"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	s := &Settings{Version: CurrentVersion}
	s.applyDefaults()
	return s
}

// applyDefaults fills missing sections and zero values
func (s *Settings) applyDefaults() {
	if s.Platform == nil {
		s.Platform = &PlatformPrefs{}
	}
	if s.Platform.BaseURL == "" {
		s.Platform.BaseURL = DefaultBaseURL
	}
	if s.Platform.TimeoutSeconds <= 0 {
		s.Platform.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if s.Wizard == nil {
		s.Wizard = &WizardPrefs{}
	}
	if s.Wizard.PageSize <= 0 {
		s.Wizard.PageSize = DefaultPageSize
	}
	if s.Viewer == nil {
		s.Viewer = &ViewerPrefs{}
	}
	if s.Viewer.DateLayout == "" {
		s.Viewer.DateLayout = DefaultDateLayout
	}
}

// Timeout returns the platform request timeout
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Platform.TimeoutSeconds) * time.Second
}

// TouchParent moves id to the front of the recent list, creating the entry
// if needed. An empty label keeps the existing one.
func (s *Settings) TouchParent(id, label string) {
	if id == "" {
		return
	}

	entry := &RecentParent{ID: id}
	if i := slices.IndexFunc(s.Recent, func(r *RecentParent) bool { return r.ID == id }); i >= 0 {
		entry = s.Recent[i]
		s.Recent = slices.Delete(s.Recent, i, i+1)
	}
	if label != "" {
		entry.Label = label
	}
	entry.LastUsed = time.Now()

	s.Recent = slices.Insert(s.Recent, 0, entry)
	if len(s.Recent) > MaxRecentParents {
		s.Recent = s.Recent[:MaxRecentParents]
	}
}

// RecentParentIDs returns the recent parent ids, most recent first
func (s *Settings) RecentParentIDs() []string {
	ids := make([]string, 0, len(s.Recent))
	for _, r := range s.Recent {
		ids = append(ids, r.ID)
	}
	return ids
}
