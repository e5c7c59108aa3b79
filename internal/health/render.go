package health

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Render returns the snapshot in the requested format ("text" or
// "json").
func (s *Snapshot) Render(format string) (string, error) {
	switch format {
	case "", "text":
		return s.ToText(), nil
	case "json":
		return s.ToJSON()
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

// ToJSON renders the snapshot as indented JSON
func (s *Snapshot) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal health snapshot: %w", err)
	}
	return string(data), nil
}

// ToText renders a human-readable health summary
func (s *Snapshot) ToText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s System health: %s\n", levelIcon(s.Level), s.Level)
	fmt.Fprintf(&b, "Host: %s | Uptime: %s\n\n", s.Hostname, formatUptime(s.UptimeSeconds))

	fmt.Fprintf(&b, "%s Load: %.2f %.2f %.2f (%.2f per core, %d cores)\n",
		levelIcon(s.Load.Level), s.Load.Averages[0], s.Load.Averages[1], s.Load.Averages[2],
		s.Load.PerCore, s.Load.Cores)
	fmt.Fprintf(&b, "%s Memory: %.1f%% used, swap %.1f%%\n",
		levelIcon(s.Memory.Level), s.Memory.UsedPct, s.Memory.SwapUsedPct)

	for _, d := range s.Disks {
		fmt.Fprintf(&b, "%s Disk %s: %.0f%% used, %s free (%s)\n",
			levelIcon(d.Level), d.Mountpoint, d.UsedPct, d.Available, d.Filesystem)
	}

	for _, svc := range s.ServicesDown {
		fmt.Fprintf(&b, "%s Service %s: enabled but not running\n", levelIcon(LevelCritical), svc.Name)
	}
	if len(s.FailedUnits) > 0 {
		fmt.Fprintf(&b, "%s Failed units: %s\n", levelIcon(LevelWarning), strings.Join(s.FailedUnits, ", "))
	}
	if s.OOMKills > 0 {
		fmt.Fprintf(&b, "%s OOM kills in the last hour: %d\n", levelIcon(LevelCritical), s.OOMKills)
	}

	if len(s.Problems) > 0 {
		b.WriteString("\nProblems:\n")
		for _, p := range s.Problems {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}

	return b.String()
}

func levelIcon(l Level) string {
	switch l {
	case LevelCritical:
		return "❌"
	case LevelWarning:
		return "⚠️"
	default:
		return "✅"
	}
}

func formatUptime(seconds int64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
