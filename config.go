package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"gopkg.in/yaml.v3"

	"acitools/aci"
	"acitools/nsg"
	"acitools/notify"
)

const settingsFile = "aci-tools.yaml"

// TenantSource selects where a tenant export comes from.
type TenantSource struct {
	File   string `arg:"-f,--file" help:"tenant snapshot file"`
	Tenant string `arg:"-t,--tenant" help:"tenant to download from the APIC"`
}

type TenantsCmd struct{}

type ExportNSGCmd struct {
	TenantSource
	ExportDir     string `arg:"--export-dir" help:"directory for the generated .tf.json files"`
	RuleCeiling   int    `arg:"--rule-ceiling" help:"rule number past the per-direction quota"`
	ContractRules bool   `arg:"--contract-rules" help:"derive rules from contracts instead of permitting all egress and icmp in"`
}

type ExportXLSXCmd struct {
	TenantSource
	Output string `arg:"-o,--output" help:"workbook file name"`
}

type ReportCmd struct {
	TenantSource
	View string `arg:"--view" help:"contracts or epgs"`
}

type DuplicateCmd struct {
	Source string `arg:"positional,required" help:"tenant to copy"`
	Target string `arg:"positional,required" help:"name of the new tenant"`
}

type WatchCmd struct {
	Platform string `arg:"--platform" help:"webex_teams or slack"`
}

// NSGSettings are the translation settings only the settings file carries.
type NSGSettings struct {
	ExportDir   string   `yaml:"export_dir"`
	RuleCeiling int      `yaml:"rule_ceiling"`
	PermitAll   bool     `yaml:"permit_all_egress_and_icmp_in"`
	Exclude     []string `yaml:"exclude_epg_names"`
}

type Config struct {
	IP             string `arg:"-i" help:"APIC IP address" yaml:"ip"`
	Username       string `arg:"-u" yaml:"username"`
	Password       string `arg:"-p" yaml:"password"`
	Verbose        bool   `arg:"-v" yaml:"verbose"`
	RequestTimeout int    `arg:"--request-timeout" help:"HTTP request timeout in seconds" yaml:"request_timeout"`
	ReloginAfter   int    `arg:"--relogin-after" help:"session age in seconds that triggers a new login" yaml:"relogin_after"`
	DataDir        string `arg:"--data-dir" help:"tenant snapshot directory" yaml:"data_dir"`
	LogFile        string `arg:"--log-file" yaml:"log_file"`

	Tenants    *TenantsCmd    `arg:"subcommand:tenants" help:"list tenants" yaml:"-"`
	ExportNSG  *ExportNSGCmd  `arg:"subcommand:export-nsg" help:"translate a tenant into OCI network security groups" yaml:"-"`
	ExportXLSX *ExportXLSXCmd `arg:"subcommand:export-xlsx" help:"write the EPG to filter entry workbook" yaml:"-"`
	Report     *ReportCmd     `arg:"subcommand:report" help:"print contract or EPG tables" yaml:"-"`
	Duplicate  *DuplicateCmd  `arg:"subcommand:duplicate" help:"copy a tenant under a new name" yaml:"-"`
	Watch      *WatchCmd      `arg:"subcommand:watch" help:"forward tenant changes and faults to a chat room" yaml:"-"`

	NSG    NSGSettings     `arg:"-" yaml:",inline"`
	Notify notify.Settings `arg:"-" yaml:"notify"`
}

func (Config) Description() string {
	return "Export ACI tenant security policy and watch tenant changes."
}

func (Config) Version() string {
	if Rev == "" {
		return fmt.Sprintf("Version %s local build", version)
	}
	return fmt.Sprintf("Version %s Revision %s", version, Rev)
}

func defaultConfig() Config {
	return Config{
		RequestTimeout: 30,
		ReloginAfter:   55,
		DataDir:        "./data/",
		LogFile:        "aci-tools.log",
		NSG: NSGSettings{
			ExportDir:   "./export-OCI/",
			RuleCeiling: nsg.DefaultRuleCeiling,
			PermitAll:   true,
			Exclude:     aci.DefaultExclusions,
		},
	}
}

func settingsPath() string {
	if fn := os.Getenv("ACI_TOOLS_CONFIG"); fn != "" {
		return fn
	}
	return settingsFile
}

// loadSettings overlays the YAML settings file on cfg. A missing default
// file is not an error.
func loadSettings(fn string, cfg *Config) error {
	data, err := os.ReadFile(fn)
	if os.IsNotExist(err) && fn == settingsFile {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read settings")
	}
	return errors.Wrapf(yaml.Unmarshal(data, cfg), "parse %s", fn)
}

func newConfigFromCLI() Config {
	cfg := defaultConfig()
	if err := loadSettings(settingsPath(), &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	p := arg.MustParse(&cfg)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}
	return cfg
}

func (cfg Config) requestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeout) * time.Second
}

func (cfg Config) reloginAfter() time.Duration {
	return time.Duration(cfg.ReloginAfter) * time.Second
}

// nsgOptions merges export-nsg flags into the file settings.
func (cfg Config) nsgOptions(cmd *ExportNSGCmd) NSGSettings {
	s := cfg.NSG
	if cmd.ExportDir != "" {
		s.ExportDir = cmd.ExportDir
	}
	if cmd.RuleCeiling > 0 {
		s.RuleCeiling = cmd.RuleCeiling
	}
	if cmd.ContractRules {
		s.PermitAll = false
	}
	return s
}

func input(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s ", prompt)
	input, _ := reader.ReadString('\n')
	return strings.Trim(input, "\r\n")
}

// credentials prompts for whatever login details are still missing.
func (cfg *Config) credentials() {
	if cfg.IP == "" {
		cfg.IP = input("APIC IP:")
	}
	if cfg.Username == "" {
		cfg.Username = input("Username:")
	}
	if cfg.Password == "" {
		fmt.Print("Password: ")
		pwd, _ := terminal.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		cfg.Password = string(pwd)
	}
}
