package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "HIL"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	PeripheralConfig = &cli.StringFlag{
		Name:     "peripherals",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("PERIPHERALS"),
		Usage:    "Path to peripheral config file (eg. 'peripherals_config.yaml')",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory to store per-run summary artifacts",
	}
	StrictDiscovery = &cli.BoolFlag{
		Name:    "strict-discovery",
		Value:   false,
		EnvVars: prefixEnvVars("STRICT_DISCOVERY"),
		Usage:   "Abort the run when any test module failed to load instead of excluding it",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn, error",
	}
)

var requiredFlags = []cli.Flag{
	PeripheralConfig,
}

var optionalFlags = []cli.Flag{
	RunInterval,
	LogDir,
	StrictDiscovery,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
