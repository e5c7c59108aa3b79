package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Checks        map[string]bool `yaml:"checks"`
	SSH           SSHConfig       `yaml:"ssh"`
	Kernel        KernelConfig    `yaml:"kernel"`
	FileModes     []FileModeRule  `yaml:"fileModes"`
	Services      ServicesConfig  `yaml:"services"`
	Backup        BackupConfig    `yaml:"backup"`
	Notifications NotifyConfig    `yaml:"notifications"`
	Health        HealthConfig    `yaml:"health"`
	Rotate        []RotateGroup   `yaml:"rotate"`
}

// SSHConfig locates the sshd configuration the remote access checks read
type SSHConfig struct {
	ConfigPath string `yaml:"configPath"`
}

// KernelConfig holds the expected sysctl values and where to persist them
type KernelConfig struct {
	Params      map[string]string `yaml:"params"`
	PersistPath string            `yaml:"persistPath"`
}

// FileModeRule pairs a critical file with the most permissive mode it may have
type FileModeRule struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"` // octal, e.g. "0640"
}

// ModeBits parses the octal mode string
func (r FileModeRule) ModeBits() (os.FileMode, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(r.Mode, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q for %s: %w", r.Mode, r.Path, err)
	}
	return os.FileMode(v), nil
}

// ServicesConfig lists service units that should not be running
type ServicesConfig struct {
	Unnecessary []string `yaml:"unnecessary"`
}

// BackupConfig controls where pre-mutation snapshots land. An empty
// dir keeps each copy beside its source file; manifests go to the
// state dir either way.
type BackupConfig struct {
	Dir string `yaml:"dir"`
}

// NotifyConfig holds webhook notification settings
type NotifyConfig struct {
	Enabled        bool          `yaml:"enabled"`
	OnlyOnIssues   bool          `yaml:"onlyOnIssues"`
	MinStatus      string        `yaml:"minStatus"` // fail, warn
	MaskHostname   bool          `yaml:"maskHostname"`
	Discord        DiscordConfig `yaml:"discord"`
	Slack          SlackConfig   `yaml:"slack"`
	GenericWebhook WebhookConfig `yaml:"webhook"`
}

type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhookUrl"`
	Username   string `yaml:"username"`
}

type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhookUrl"`
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
}

type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"` // POST, PUT
	Headers map[string]string `yaml:"headers"`
}

// HealthConfig holds thresholds for the health subcommand
type HealthConfig struct {
	DiskWarnPct      float64  `yaml:"diskWarnPct"`
	DiskCritPct      float64  `yaml:"diskCritPct"`
	MemWarnPct       float64  `yaml:"memWarnPct"`
	MemCritPct       float64  `yaml:"memCritPct"`
	SwapWarnPct      float64  `yaml:"swapWarnPct"`
	LoadWarnPerCore  float64  `yaml:"loadWarnPerCore"`
	LoadCritPerCore  float64  `yaml:"loadCritPerCore"`
	CriticalServices []string `yaml:"criticalServices"`
}

// RotateGroup describes one set of log files to rotate together
type RotateGroup struct {
	Name       string   `yaml:"name"`
	Patterns   []string `yaml:"patterns"`
	Keep       int      `yaml:"keep"`
	Compress   bool     `yaml:"compress"`
	MinAgeDays int      `yaml:"minAgeDays"`
	MinSizeKB  int64    `yaml:"minSizeKB"`
}

func Default() *Config {
	return &Config{
		Checks: map[string]bool{
			"ssh-root-login":          true,
			"ssh-password-auth":       true,
			"ssh-empty-passwords":     true,
			"firewall-active":         true,
			"updates-pending":         true,
			"accounts-empty-password": true,
			"accounts-uid-zero":       true,
			"file-permissions":        true,
			"kernel-params":           true,
			"unnecessary-services":    true,
			"auditd-enabled":          true,
		},
		SSH: SSHConfig{
			ConfigPath: "/etc/ssh/sshd_config",
		},
		Kernel: KernelConfig{
			Params: map[string]string{
				"net.ipv4.tcp_syncookies":                    "1",
				"net.ipv4.conf.all.rp_filter":                "1",
				"net.ipv4.icmp_echo_ignore_broadcasts":       "1",
				"net.ipv4.conf.all.accept_redirects":         "0",
				"net.ipv4.conf.all.send_redirects":           "0",
				"net.ipv4.conf.default.accept_source_route":  "0",
				"kernel.randomize_va_space":                  "2",
			},
			PersistPath: "/etc/sysctl.d/99-hardhound.conf",
		},
		FileModes: []FileModeRule{
			{Path: "/etc/passwd", Mode: "0644"},
			{Path: "/etc/group", Mode: "0644"},
			{Path: "/etc/shadow", Mode: "0640"},
			{Path: "/etc/gshadow", Mode: "0640"},
			{Path: "/etc/ssh/sshd_config", Mode: "0600"},
		},
		Services: ServicesConfig{
			Unnecessary: []string{
				"telnet.socket",
				"rsh.socket",
				"rlogin.socket",
				"vsftpd",
				"avahi-daemon",
				"cups",
			},
		},
		Backup: BackupConfig{
			Dir: "",
		},
		Notifications: NotifyConfig{
			Enabled:      false,
			OnlyOnIssues: true,
			MinStatus:    "fail",
			MaskHostname: false,
			Discord: DiscordConfig{
				Username: "Hardhound",
			},
			Slack: SlackConfig{
				Username: "Hardhound",
			},
			GenericWebhook: WebhookConfig{
				Method: "POST",
			},
		},
		Health: HealthConfig{
			DiskWarnPct:     80,
			DiskCritPct:     95,
			MemWarnPct:      80,
			MemCritPct:      95,
			SwapWarnPct:     50,
			LoadWarnPerCore: 1.5,
			LoadCritPerCore: 3.0,
			CriticalServices: []string{
				"sshd", "ssh",
			},
		},
		Rotate: []RotateGroup{
			{
				Name:       "hardhound",
				Patterns:   []string{"/var/log/hardhound/*.log"},
				Keep:       5,
				Compress:   true,
				MinAgeDays: 1,
				MinSizeKB:  64,
			},
		},
	}
}

func Load() (*Config, error) {
	cfg := Default()
	home, _ := os.UserHomeDir()

	// Build search paths with priority order
	searchPaths := []string{}

	// 1. Environment variable (highest priority)
	if configDir := os.Getenv("HARDHOUND_CONFIG_DIR"); configDir != "" {
		searchPaths = append(searchPaths,
			filepath.Join(configDir, ".hardhound.yaml"),
			filepath.Join(configDir, ".hardhound.yml"),
		)
	}

	// 2. Current directory
	searchPaths = append(searchPaths,
		".hardhound.yaml", ".hardhound.yml",
	)

	// 3. Home directory
	if home != "" {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".hardhound.yaml"),
			filepath.Join(home, ".hardhound.yml"),
		)
	}

	// 4. System-wide config
	searchPaths = append(searchPaths, "/etc/hardhound/config.yaml")

	configLoaded := false
	for _, path := range searchPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config at %s: %w", path, err)
		}
		configLoaded = true
		break
	}

	if configLoaded {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// IsCheckEnabled reports whether a check id is enabled; unknown ids default to enabled
func (c *Config) IsCheckEnabled(id string) bool {
	enabled, ok := c.Checks[id]
	return !ok || enabled
}

// Validate checks config for errors
func (c *Config) Validate() error {
	if c.SSH.ConfigPath == "" {
		return fmt.Errorf("ssh.configPath must not be empty")
	}

	for _, rule := range c.FileModes {
		if rule.Path == "" {
			return fmt.Errorf("fileModes entry with empty path")
		}
		if _, err := rule.ModeBits(); err != nil {
			return err
		}
	}

	if c.Kernel.PersistPath == "" {
		return fmt.Errorf("kernel.persistPath must not be empty")
	}

	if err := c.validateWebhooks(); err != nil {
		return err
	}

	switch c.Notifications.MinStatus {
	case "fail", "warn":
	default:
		return fmt.Errorf("invalid notifications.minStatus: %s (must be: fail, warn)", c.Notifications.MinStatus)
	}

	if c.Health.DiskWarnPct > c.Health.DiskCritPct {
		return fmt.Errorf("health.diskWarnPct (%v) must not exceed diskCritPct (%v)", c.Health.DiskWarnPct, c.Health.DiskCritPct)
	}
	if c.Health.MemWarnPct > c.Health.MemCritPct {
		return fmt.Errorf("health.memWarnPct (%v) must not exceed memCritPct (%v)", c.Health.MemWarnPct, c.Health.MemCritPct)
	}

	for _, g := range c.Rotate {
		if g.Name == "" {
			return fmt.Errorf("rotate group with empty name")
		}
		if len(g.Patterns) == 0 {
			return fmt.Errorf("rotate group %q has no patterns", g.Name)
		}
		if g.Keep < 1 {
			return fmt.Errorf("rotate group %q: keep must be >= 1, got %d", g.Name, g.Keep)
		}
	}

	return nil
}

func (c *Config) validateWebhooks() error {
	if c.Notifications.Discord.Enabled && c.Notifications.Discord.WebhookURL != "" {
		if !isHTTPURL(c.Notifications.Discord.WebhookURL) {
			return fmt.Errorf("invalid Discord webhook URL: must start with http:// or https://")
		}
	}

	if c.Notifications.Slack.Enabled && c.Notifications.Slack.WebhookURL != "" {
		if !isHTTPURL(c.Notifications.Slack.WebhookURL) {
			return fmt.Errorf("invalid Slack webhook URL: must start with http:// or https://")
		}
	}

	if c.Notifications.GenericWebhook.Enabled && c.Notifications.GenericWebhook.URL != "" {
		if !isHTTPURL(c.Notifications.GenericWebhook.URL) {
			return fmt.Errorf("invalid generic webhook URL: must start with http:// or https://")
		}
	}

	return nil
}

func isHTTPURL(u string) bool {
	u = strings.TrimSpace(u)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// WriteDefault writes the default configuration to the given path
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
