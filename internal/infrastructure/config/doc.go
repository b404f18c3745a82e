// Package config handles loading and validation of Huelink Core configuration.
//
// Configuration is loaded from a YAML file with three layers of precedence:
//
//  1. Hardcoded defaults (lowest)
//  2. YAML file values
//  3. HUELINK_* environment variables (highest)
//
// A missing bridge address or application key fails validation: the
// mirror cannot operate without them, and the failure is surfaced to
// the operator at startup instead of being retried.
//
// Example:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Bridge.Address)
package config
