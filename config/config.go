// Package config is the environment variable driven configuration of the strata server.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-simpler.org/env"

	"strata.lol/appdata"
	"strata.lol/apputil"
	"strata.lol/chk"
	"strata.lol/config/keyvalue"
	envfile "strata.lol/env"
)

// C is the configuration for a strata server. Anything more complex than selecting and
// tuning the engine belongs in the database itself.
type C struct {
	AppName      string  `env:"APP_NAME" default:"strata"`
	Profile      string  `env:"PROFILE" usage:"root path for all other path configurations (based on APP_NAME and OS specific location)"`
	DataDir      string  `env:"DATA_DIR" usage:"engine data directory (default PROFILE/db)"`
	Engine       string  `env:"ENGINE" default:"ratel" usage:"blob store engine [ratel|gravel]"`
	InMemory     bool    `env:"IN_MEMORY" default:"false" usage:"keep all data in memory, nothing is persisted"`
	Listen       string  `env:"LISTEN" default:"0.0.0.0" usage:"network listen address"`
	Port         int     `env:"PORT" default:"3340" usage:"port to listen on"`
	LogLevel     string  `env:"LOG_LEVEL" default:"info" usage:"debug level: fatal error warn info debug trace"`
	DbLogLevel   string  `env:"DB_LOG_LEVEL" default:"info" usage:"debug level: fatal error warn info debug trace"`
	LogFile      string  `env:"LOG_FILE" usage:"also write logs to this file, rotated at LOG_FILE_MB megabytes"`
	LogFileMb    int     `env:"LOG_FILE_MB" default:"100" usage:"size in megabytes at which the log file is rotated"`
	Compression  string  `env:"COMPRESSION" default:"none" usage:"compress the database, [none|snappy|zstd] (ratel only)"`
	BlockCacheMb int     `env:"BLOCK_CACHE_MB" default:"256" usage:"engine block cache size in megabytes"`
	ArenaLimit   int     `env:"ARENA_LIMIT" default:"67108864" usage:"maximum bytes of scratch memory a single request may use, 0 is unlimited"`
	Retries      int     `env:"RETRIES" default:"8" usage:"attempts of an atomic write that keeps conflicting"`
	MaxConns     int     `env:"MAX_CONNS" default:"1024" usage:"maximum simultaneous HTTP connections, 0 is unlimited"`
	RateLimit    float64 `env:"RATE_LIMIT" default:"0" usage:"maximum HTTP requests per second over all clients, 0 is unlimited"`
	RateBurst    int     `env:"RATE_BURST" default:"100" usage:"requests allowed at once above RATE_LIMIT"`
	AdminKey     string  `env:"ADMIN_KEY" usage:"base64 x509 ECDSA public key verifying admin tokens, admin operations are disabled without it (make one with stratactl keygen)"`
	Pprof        bool    `env:"PPROF" default:"false" usage:"enable pprof on 127.0.0.1:6060"`
	MemLimit     int     `env:"MEMLIMIT" default:"500000000" usage:"set memory limit, default is 500Mb"`
}

// New loads the configuration from the environment, then from a .env file in the profile
// directory if one exists, with the environment taking precedence.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, nil); chk.T(err) {
		return
	}
	if cfg.Profile == "" {
		cfg.Profile = appdata.Dir(cfg.AppName)
	}
	envPath := filepath.Join(cfg.Profile, ".env")
	if apputil.FileExists(envPath) {
		var e envfile.Env
		if e, err = envfile.GetEnv(envPath); chk.T(err) {
			return
		}
		// the real environment overrides the file
		for _, kv := range keyvalue.EnvKV(*cfg) {
			if v, ok := os.LookupEnv(kv.Key); ok {
				e[kv.Key] = v
			}
		}
		if err = env.Load(cfg, &env.Options{Source: e}); chk.E(err) {
			return
		}
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.Profile, "db")
	}
	switch cfg.Engine {
	case "ratel", "gravel":
	default:
		err = fmt.Errorf("unknown engine '%s', must be ratel or gravel", cfg.Engine)
		return
	}
	return
}

// HelpRequested returns true if any of the common types of help invocation are
// found as the first command line parameter/flag.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv returns true if the first command line parameter is "env".
func GetEnv() (requested bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "env":
			requested = true
		}
	}
	return
}

// PrintEnv renders the configuration as a shell script of exports.
func PrintEnv(cfg *C, printer io.Writer) { keyvalue.PrintEnv(*cfg, printer) }

// PrintHelp outputs a help text listing the configuration options and default
// values to a provided io.Writer (usually os.Stderr or os.Stdout).
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer,
		"Environment variables that configure %s:\n\n", cfg.AppName)
	env.Usage(cfg, printer, nil)
	_, _ = fmt.Fprintf(printer,
		"\nCLI parameter 'help' also prints this information\n"+
			"\n.env file found at the PROFILE path will be automatically "+
			"loaded for configuration.\nenvironment overrides it and "+
			"you can also edit the file to set configuration options\n\n"+
			"use the parameter 'env' to print out the current configuration to the terminal\n\n"+
			"set the environment using\n\n\t%s env>%s/.env\n\n", os.Args[0], cfg.Profile)
}
