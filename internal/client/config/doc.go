// Package config loads runtime configuration for the dmara CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Optional config file named by -c/--config. Files ending in .yaml or
//     .yml are YAML, anything else JSON. Unset keys keep earlier values.
//  3. Command-line flags the user set explicitly.
//
// # File schema
//
// Durations may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://dmara.example",
//	  "online_check_interval": "3s",
//	  "search_debounce": "300ms",
//	  "storage": {"driver": "sqlite"},
//	  "auth": {"identity_path": "hobbies", "google_client_id": "..."},
//	  "categories": {"shows_items": "EXHIBITION", "shows_posts": "SHOW"},
//	  "log": {"backend": "zap", "level": "debug"}
//	}
package config
