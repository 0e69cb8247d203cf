// Package version holds the optree build version.
package version

// Version is the canonical optree version string.
const Version = "0.1.0"
