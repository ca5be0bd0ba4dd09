// Package config loads and saves downloader settings.
//
// Settings persist between runs in a JSON file by default; YAML works
// too, chosen by file extension. Environment variables with the
// CHRONICLE_ prefix overlay whatever the file provides.
//
// # Usage
//
//	cfg, err := config.LoadFromFile("Chronicle_Android_bulk_data_downloader_config.json")
//	if err != nil {
//		return err
//	}
//	cfg.LoadFromEnv()
package config
