package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// FuzzConfigParsing tests config YAML unmarshaling with random input
func FuzzConfigParsing(f *testing.F) {
	// Seed corpus with valid examples
	f.Add([]byte(`checks:
  firewall-active: true
  ssh-root-login: false
ssh:
  configPath: /etc/ssh/sshd_config
kernel:
  params:
    net.ipv4.tcp_syncookies: "1"
  persistPath: /etc/sysctl.d/99-hardhound.conf
`))

	f.Add([]byte(`notifications:
  enabled: true
  minStatus: fail
  discord:
    webhookUrl: "https://discord.com/api/webhooks/test"
    username: "Test Bot"
`))

	f.Add([]byte(`rotate:
  - name: syslog
    patterns: ["/var/log/syslog*"]
    keep: 7
    compress: true
`))

	f.Add([]byte(`{}`))
	f.Add([]byte(``))
	f.Add([]byte(`invalid: [[[`))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg := Default()
		// Should not panic on any YAML input
		_ = yaml.Unmarshal(data, cfg)
	})
}

// FuzzNotifyConfigParsing tests notification config parsing
func FuzzNotifyConfigParsing(f *testing.F) {
	f.Add([]byte(`enabled: true
onlyOnIssues: false
minStatus: "warn"
discord:
  enabled: true
  webhookUrl: "https://discord.com/api/test"
  username: "Bot"
slack:
  enabled: false
webhook:
  enabled: false
`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var nc NotifyConfig
		// Should not panic on notification config
		_ = yaml.Unmarshal(data, &nc)
	})
}
