// Package config provides the database settings used by tests that run against real databases.
package config
