// Package config loads the fractals server configuration.
//
// The configuration lives in fractals.json (or fractals.toml) in the
// working directory. Every field has a default, so the file is optional.
// Environment variables override the file:
//
//	BASE_URL              base path the app is deployed under
//	FRACTALS_HISTORY      web, hash or memory
//	FRACTALS_ADDR         listen address
//	FRACTALS_VIEWS_DIR    read view bundles from a directory
//	FRACTALS_S3_BUCKET    read view bundles from S3
//	FRACTALS_S3_PREFIX, FRACTALS_S3_REGION, FRACTALS_S3_ENDPOINT
//	FRACTALS_LOG_LEVEL    debug, info, warn or error
//
// # Configuration File Structure
//
//	{
//	  "base": "/app",
//	  "history": "web",
//	  "server": {
//	    "addr": ":8080",
//	    "shutdownTimeout": "10s",
//	    "metrics": true
//	  },
//	  "views": {
//	    "s3": {"bucket": "fractals-views", "prefix": "v2"}
//	  },
//	  "navigation": {"loadTimeout": "30s"},
//	  "log": {"level": "info", "format": "json"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ApplyEnv(os.Getenv)
package config
