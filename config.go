package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "guacd.log"
	defaultListenAddr     = ":9735"
	defaultUserAPIAddr    = "localhost:9736"
	defaultConfigFilename = "guacd.conf"
)

var (
	guacdHomeDir    = appDataDir("guacd")
	defaultConfigFile = filepath.Join(guacdHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(guacdHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(guacdHomeDir, defaultLogDirname)
)

// config holds guacd's runtime configuration, parsed from the command
// line and an optional config file the way the teacher's loadConfig
// layers go-flags' IniParser under its command-line parser.
type config struct {
	ConfigFile string `long:"configfile" description:"Path to configuration file"`
	DataDir    string `long:"datadir" description:"Data directory, created at startup (counterparty state is kept in memory only)"`

	ListenAddr  string `long:"listenaddr" description:"Address to listen for inbound PeerApi connections"`
	UserAPIAddr string `long:"userapiaddr" description:"Address to listen for UserApi (guacctl) connections"`

	MyAddress      string `long:"myaddress" description:"This account's hex address"`
	PrivateKeyFile string `long:"privatekeyfile" description:"Path to the hex-encoded ECDSA private key file"`
	ContractAddr   string `long:"contractaddr" description:"Address of the settlement ledger contract"`

	LedgerRPCURL string `long:"ledgerrpcurl" description:"RPC endpoint of the settlement ledger client"`

	LogDir   string `long:"logdir" description:"Log directory, created at startup (log output goes to stdout)"`
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}"`

	Peers []string `long:"peer" description:"address=url pair for a known counterparty endpoint, may be given multiple times"`
}

// defaultConfig returns a config populated with guacd's defaults, mirroring
// the teacher's loadConfig default-value struct literal.
func defaultConfig() config {
	return config{
		ConfigFile:  defaultConfigFile,
		DataDir:     defaultDataDir,
		ListenAddr:  defaultListenAddr,
		UserAPIAddr: defaultUserAPIAddr,
		LogDir:      defaultLogDir,
		LogLevel:    defaultLogLevel,
	}
}

// loadConfig parses command line flags over the compiled-in defaults,
// optionally loading a config file first, and performs minimal validation
// of the result (spec §2's ambient config layer).
func loadConfig() (*config, error) {
	preCfg := defaultConfig()
	preParser := flags.NewParser(&preCfg, flags.Default)
	if _, err := preParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, err
		}
		return nil, err
	}

	cfg := preCfg
	if err := flags.NewIniParser(preParser).ParseFile(cfg.ConfigFile); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.MyAddress == "" {
		return nil, fmt.Errorf("--myaddress is required")
	}
	if cfg.PrivateKeyFile == "" {
		return nil, fmt.Errorf("--privatekeyfile is required")
	}
	if cfg.ContractAddr == "" {
		return nil, fmt.Errorf("--contractaddr is required")
	}

	for _, dir := range []string{cfg.DataDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("unable to create directory %s: %w", dir, err)
		}
	}

	setLogLevels(cfg.LogLevel)

	return &cfg, nil
}

// appDataDir returns the guacd home directory under the user's config dir,
// the way btcutil.AppDataDir locates lnd's.
func appDataDir(appName string) string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(".", appName)
}
