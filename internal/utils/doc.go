// Package utils holds the process-level plumbing shared by the thanks CLI:
// the Viper-backed ConfigurationLoader, the zap LoggerFactory, flag usage
// formatting, home directory expansion for configured paths, and the
// FlushingWriter used for report output.
package utils
