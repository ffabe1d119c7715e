package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// HatiDir is the name of the project directory created by `hati init`
	HatiDir = ".hati"

	// ConfigFile is the name of the configuration file inside HatiDir
	ConfigFile = "config.yaml"

	// SessionFile is the name of the session file inside HatiDir
	SessionFile = "session.json"

	// DatabaseFile is the name of the local DuckDB database inside HatiDir
	DatabaseFile = "local.duckdb"

	// DefaultCloudEndpoint is the control plane endpoint used when none is configured
	DefaultCloudEndpoint = "https://api.hatidata.com"

	// DefaultTarget is the push target used when none is configured
	DefaultTarget = "cloud"

	// DashboardBase is the base URL for the web dashboard
	DashboardBase = "https://app.hatidata.com"

	// BillingURL is the billing page opened by `hati auth upgrade`
	BillingURL = "https://app.hatidata.com/billing"

	// PricingURL is shown in upgrade hints
	PricingURL = "https://hatidata.com/pricing"
)
