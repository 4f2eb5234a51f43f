// Package file loads the application configuration from a TOML file.
// Secrets (the Discord token, the contact webhook URL) can be supplied
// through environment variables instead of the file, and the environment
// wins when both are set.
package file
