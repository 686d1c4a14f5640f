package cmd

import (
	"fmt"
	"os"
)

// EnvCheckResult holds the result of environment override inspection
type EnvCheckResult struct {
	Present  map[string]string // Variables that are set (masked values)
	Warnings []string          // Non-fatal warnings
}

// envOverrides are the CLARIO_-prefixed variables the config loader honors.
var envOverrides = []string{
	"CLARIO_GENERAL_ENVIRONMENT",
	"CLARIO_GENERAL_LOG_LEVEL",
	"CLARIO_BACKEND_ORIGIN",
	"CLARIO_BACKEND_REDIRECT_URI",
	"CLARIO_STORAGE_DIR",
}

// CheckEnvOverrides reports which configuration overrides are set in the
// environment. None are required; the config file and built-in defaults
// cover everything.
func CheckEnvOverrides() *EnvCheckResult {
	result := &EnvCheckResult{
		Present:  make(map[string]string),
		Warnings: []string{},
	}

	for _, v := range envOverrides {
		if val := os.Getenv(v); val != "" {
			result.Present[v] = maskSecret(val)
		}
	}

	if env := os.Getenv("CLARIO_GENERAL_ENVIRONMENT"); env != "" && env != "local" && env != "production" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("CLARIO_GENERAL_ENVIRONMENT=%q is not a known environment", env))
	}

	return result
}

// PrintConfigCheck prints the environment check results
func PrintConfigCheck(result *EnvCheckResult) {
	fmt.Println("=== Environment Check ===")

	if len(result.Present) == 0 {
		fmt.Println("No configuration overrides set; using file/defaults.")
	} else {
		fmt.Println("Configured overrides:")
		for k, v := range result.Present {
			fmt.Printf("   - %s = %s\n", k, v)
		}
	}

	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	fmt.Println("=========================")
}

// maskSecret masks a value for display, showing only first and last 2 chars
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}
