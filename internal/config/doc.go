// Package config provides user settings for the orderdesk CLI.
//
// Settings live in a YAML file in the OS configuration directory:
//   - Linux: $XDG_CONFIG_HOME/orderdesk/config.yaml or $HOME/.config/orderdesk/config.yaml
//   - macOS: $HOME/.config/orderdesk/config.yaml
//   - Windows: %LOCALAPPDATA%\orderdesk\config.yaml
//
// # Security
//
// The platform bearer token is NEVER written to the file. It is read from
// the ORDERDESK_TOKEN environment variable.
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings.Wizard.PageSize = 25
//	settings.TouchParent("00Q000000000001", "Ada Lovelace")
//
//	// Save changes atomically
//	if err := settings.Save(); err != nil {
//	    log.Fatal(err)
//	}
package config
