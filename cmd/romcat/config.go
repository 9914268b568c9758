package main

import (
	"github.com/spf13/viper"
)

// getConfigString retrieves a string config value with precedence:
// flag > env (ROMCAT_*) > config file > default.
func getConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// getConfigBool retrieves a bool config value.
func getConfigBool(key string) bool {
	return viper.GetBool(key)
}
