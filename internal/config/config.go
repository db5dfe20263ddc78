// Package config parses command-line flags and the environment into the run
// configuration.
package config

import (
	"errors"
	"flag"
	"os"
	"runtime"
	"strings"

	"github.com/ilexum-group/cobra/pkg/models"
)

// DestinationEnvVar names the environment variable that supplies the
// destination drive in unattended mode.
const DestinationEnvVar = "COBRA_DEST_DRIVE"

// ErrDestinationRequired is returned when unattended mode is requested but no
// destination was supplied via flag or environment. This is a fatal startup
// error.
var ErrDestinationRequired = errors.New("unattended mode requires a destination (--dest or " + DestinationEnvVar + ")")

// Config holds the parsed run configuration.
type Config struct {
	Drives            []string
	Destination       string
	Quick             bool
	DryRun            bool
	PreserveHierarchy bool
	IncludeDPAPI      bool
	Unattended        bool
	NoVerify          bool
}

// Flags converts the configuration into the manifest's mode-flag block.
func (c *Config) Flags() models.ModeFlags {
	return models.ModeFlags{
		Quick:             c.Quick,
		DryRun:            c.DryRun,
		Unattended:        c.Unattended,
		PreserveHierarchy: c.PreserveHierarchy,
		IncludeDPAPI:      c.IncludeDPAPI,
		Verify:            !c.NoVerify,
	}
}

// defaultDrive is the single system volume scanned when --drives is absent.
func defaultDrive() string {
	if runtime.GOOS == "windows" {
		if d := os.Getenv("SystemDrive"); d != "" {
			return d + `\`
		}
		return `C:\`
	}
	return "/"
}

// LoadFromFlags parses args (without the program name). --help is reported as
// flag.ErrHelp and should exit 0.
func LoadFromFlags(args []string) (*Config, error) {
	cfg := &Config{}
	var drives string

	fs := flag.NewFlagSet("cobra", flag.ContinueOnError)
	fs.StringVar(&drives, "drives", "", "comma-separated volume roots to deep-scan (default: system volume)")
	fs.StringVar(&cfg.Destination, "dest", "", "destination drive or folder for collected evidence")
	fs.BoolVar(&cfg.Quick, "quick", false, "skip the deep filesystem scan")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "build the queue and report, copy nothing")
	fs.BoolVar(&cfg.PreserveHierarchy, "preserve-hierarchy", false, "mirror source paths on the destination instead of flattening")
	fs.BoolVar(&cfg.IncludeDPAPI, "include-dpapi", false, "add the DPAPI protect folder to the known locations")
	fs.BoolVar(&cfg.Unattended, "unattended", false, "suppress prompts; destination comes from --dest or "+DestinationEnvVar)
	fs.BoolVar(&cfg.NoVerify, "no-verify", false, "skip re-hashing copied files on the destination")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if drives == "" {
		cfg.Drives = []string{defaultDrive()}
	} else {
		for _, d := range strings.Split(drives, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.Drives = append(cfg.Drives, d)
			}
		}
	}

	if cfg.Unattended && cfg.Destination == "" {
		cfg.Destination = os.Getenv(DestinationEnvVar)
		if cfg.Destination == "" {
			return nil, ErrDestinationRequired
		}
	}

	return cfg, nil
}
