// Package startup handles application initialization: configuration
// assembly from defaults, an optional TOML file and environment
// variables, directory validation, and structured startup/shutdown
// logging.
//
// Configuration precedence is ascending: built-in defaults, then the
// config file (CONFIG_FILE or ./photogrid.toml), then environment
// variables. A .env file in the working directory is folded into the
// environment before any of that happens.
package startup
