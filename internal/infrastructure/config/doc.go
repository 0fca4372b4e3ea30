// Package config handles loading and validating Radio Loan Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (RADIOLOAN_*)
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Database DSNs, broker passwords and InfluxDB tokens should be set via
//     environment variables (or a local .env file loaded by the binary)
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Loans.MaxPageSize)
package config
