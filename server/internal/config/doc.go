// Package config loads the server configuration from an optional YAML file
// plus environment overrides.
//
// Config fields:
//   - Server.HTTPPort       : REST API port (default 8000; PORT env overrides)
//   - Server.LogLevel       : debug | info | warn | error (reloadable)
//   - Server.ShutdownTimeout: graceful shutdown bound (default 10s)
//   - Server.CORS           : allowed browser origins (reloadable, default "*")
//   - Database.Driver       : "mongo" or "memory"
//   - Database.URLEnv       : env var holding the connection string (DATABASE_URL)
//   - Database.NameEnv      : env var holding the database name (DATABASE_NAME)
//   - Database.Name         : fallback database name (coffee_growth)
//   - Readings.DefaultLimit : latest-readings limit when none is given (20)
//
// Load(path) applies defaults before unmarshalling, then env overrides, then
// validates. Watch(ctx, path, onChange) reloads the file on change.
package config
