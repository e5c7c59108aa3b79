// Package health takes a read-only snapshot of basic system vitals:
// load, memory, disk, failed units, critical services and recent OOM
// kills. It never mutates anything and is independent of the
// hardening engine.
package health

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/system"
)

// Level classifies one probe or the whole snapshot
type Level string

const (
	LevelOK       Level = "OK"
	LevelWarning  Level = "WARNING"
	LevelCritical Level = "CRITICAL"
)

// Rank orders levels for worst-of aggregation
func (l Level) Rank() int {
	switch l {
	case LevelCritical:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}

func worse(a, b Level) Level {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// LoadInfo holds the 1/5/15 minute load averages and the per-core
// 1-minute figure the thresholds apply to.
type LoadInfo struct {
	Averages [3]float64 `json:"averages"`
	Cores    int        `json:"cores"`
	PerCore  float64    `json:"per_core"`
	Level    Level      `json:"level"`
}

// MemoryInfo holds RAM and swap utilization
type MemoryInfo struct {
	UsedPct     float64 `json:"used_pct"`
	SwapUsedPct float64 `json:"swap_used_pct"`
	Level       Level   `json:"level"`
}

// DiskInfo holds one mount's utilization
type DiskInfo struct {
	Mountpoint string  `json:"mountpoint"`
	UsedPct    float64 `json:"used_pct"`
	Available  string  `json:"available"`
	Filesystem string  `json:"filesystem"`
	Level      Level   `json:"level"`
}

// ServiceInfo is a critical service that is enabled but not running
type ServiceInfo struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Enabled bool   `json:"enabled"`
}

// Snapshot is the complete health picture of one moment
type Snapshot struct {
	Hostname      string        `json:"hostname"`
	TakenAt       string        `json:"taken_at"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Load          LoadInfo      `json:"load"`
	Memory        MemoryInfo    `json:"memory"`
	Disks         []DiskInfo    `json:"disks,omitempty"`
	ServicesDown  []ServiceInfo `json:"services_down,omitempty"`
	FailedUnits   []string      `json:"failed_units,omitempty"`
	OOMKills      int           `json:"oom_kills"`
	Level         Level         `json:"level"`
	Problems      []string      `json:"problems,omitempty"`
}

// Collect runs every probe once and folds the worst level. A probe
// whose tool is unavailable contributes nothing rather than failing
// the snapshot.
func Collect(ctx context.Context, cfg *config.HealthConfig) *Snapshot {
	hostname, _ := os.Hostname()
	s := &Snapshot{
		Hostname: hostname,
		TakenAt:  time.Now().UTC().Format(time.RFC3339),
		Level:    LevelOK,
	}

	s.UptimeSeconds = readUptime()
	s.Load = collectLoad(ctx, cfg)
	s.Memory = collectMemory(ctx, cfg)
	s.Disks = collectDisks(ctx, cfg)
	s.ServicesDown = collectServicesDown(ctx, cfg.CriticalServices)
	s.FailedUnits = collectFailedUnits(ctx)
	s.OOMKills = collectOOMKills(ctx)

	s.fold()
	return s
}

// fold derives the snapshot level and the problem list from the
// already-collected probes.
func (s *Snapshot) fold() {
	s.Level = worse(s.Level, s.Load.Level)
	if s.Load.Level != LevelOK {
		s.Problems = append(s.Problems, "load "+formatFloat(s.Load.PerCore)+" per core over "+strconv.Itoa(s.Load.Cores)+" cores")
	}

	s.Level = worse(s.Level, s.Memory.Level)
	if s.Memory.Level != LevelOK {
		s.Problems = append(s.Problems, "memory at "+formatFloat(s.Memory.UsedPct)+"%, swap at "+formatFloat(s.Memory.SwapUsedPct)+"%")
	}

	for _, d := range s.Disks {
		s.Level = worse(s.Level, d.Level)
		if d.Level != LevelOK {
			s.Problems = append(s.Problems, d.Mountpoint+" at "+formatFloat(d.UsedPct)+"% used")
		}
	}

	for _, svc := range s.ServicesDown {
		s.Level = worse(s.Level, LevelCritical)
		s.Problems = append(s.Problems, "critical service down: "+svc.Name)
	}

	if len(s.FailedUnits) > 0 {
		s.Level = worse(s.Level, LevelWarning)
		s.Problems = append(s.Problems, "failed units: "+strings.Join(s.FailedUnits, ", "))
	}

	if s.OOMKills > 0 {
		s.Level = worse(s.Level, LevelCritical)
		s.Problems = append(s.Problems, strconv.Itoa(s.OOMKills)+" OOM kills in the last hour")
	}
}

// ExitCode maps the snapshot level onto the monitoring convention
// 0 OK, 1 WARNING, 2 CRITICAL.
func (s *Snapshot) ExitCode() int {
	return s.Level.Rank()
}

func readUptime() int64 {
	data, err := os.ReadFile(system.HostPath("/proc/uptime"))
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0
	}
	uptime, _ := strconv.ParseFloat(fields[0], 64)
	return int64(uptime)
}

func collectLoad(ctx context.Context, cfg *config.HealthConfig) LoadInfo {
	info := LoadInfo{Cores: runtime.NumCPU(), Level: LevelOK}
	if info.Cores < 1 {
		info.Cores = 1
	}

	res, err := system.RunCommand(ctx, system.TimeoutShort, "uptime")
	if err != nil || res == nil || !res.Success {
		return info
	}
	info.Averages = parseLoadAverages(res.Stdout)
	info.PerCore = info.Averages[0] / float64(info.Cores)
	info.Level = classifyLoad(info.PerCore, cfg)
	return info
}

// parseLoadAverages extracts the three figures after "load average:"
func parseLoadAverages(out string) [3]float64 {
	var loads [3]float64
	idx := strings.Index(out, "load average:")
	if idx == -1 {
		return loads
	}
	parts := strings.Split(strings.TrimSpace(out[idx+len("load average:"):]), ",")
	for i, part := range parts {
		if i >= 3 {
			break
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			loads[i] = v
		}
	}
	return loads
}

func classifyLoad(perCore float64, cfg *config.HealthConfig) Level {
	switch {
	case cfg.LoadCritPerCore > 0 && perCore >= cfg.LoadCritPerCore:
		return LevelCritical
	case cfg.LoadWarnPerCore > 0 && perCore >= cfg.LoadWarnPerCore:
		return LevelWarning
	default:
		return LevelOK
	}
}

func collectMemory(ctx context.Context, cfg *config.HealthConfig) MemoryInfo {
	info := MemoryInfo{Level: LevelOK}
	res, err := system.RunCommand(ctx, system.TimeoutShort, "free", "-m")
	if err != nil || res == nil || !res.Success {
		return info
	}
	info.UsedPct, info.SwapUsedPct = parseFreeOutput(res.Stdout)
	info.Level = classifyMemory(info.UsedPct, info.SwapUsedPct, cfg)
	return info
}

// parseFreeOutput reads the Mem: and Swap: rows of free -m
func parseFreeOutput(out string) (memPct, swapPct float64) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		total, _ := strconv.ParseFloat(fields[1], 64)
		used, _ := strconv.ParseFloat(fields[2], 64)
		if total <= 0 {
			continue
		}
		switch fields[0] {
		case "Mem:":
			memPct = used / total * 100
		case "Swap:":
			swapPct = used / total * 100
		}
	}
	return memPct, swapPct
}

func classifyMemory(memPct, swapPct float64, cfg *config.HealthConfig) Level {
	switch {
	case cfg.MemCritPct > 0 && memPct >= cfg.MemCritPct:
		return LevelCritical
	case cfg.MemWarnPct > 0 && memPct >= cfg.MemWarnPct:
		return LevelWarning
	case cfg.SwapWarnPct > 0 && swapPct >= cfg.SwapWarnPct:
		return LevelWarning
	default:
		return LevelOK
	}
}

func collectDisks(ctx context.Context, cfg *config.HealthConfig) []DiskInfo {
	res, err := system.RunCommand(ctx, system.TimeoutShort, "df", "-h", "--output=target,pcent,avail,source")
	if err != nil || res == nil || !res.Success {
		return nil
	}
	disks := parseDFOutput(res.Stdout)
	for i := range disks {
		disks[i].Level = classifyDisk(disks[i].UsedPct, cfg)
	}
	return disks
}

// parseDFOutput reads df's target/pcent/avail/source columns, skipping
// the header and pseudo filesystems.
func parseDFOutput(out string) []DiskInfo {
	var disks []DiskInfo
	for i, line := range strings.Split(out, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		fs := fields[3]
		if fs == "tmpfs" || fs == "devtmpfs" || fs == "overlay" {
			continue
		}
		usedPct, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
		if err != nil {
			continue
		}
		disks = append(disks, DiskInfo{
			Mountpoint: fields[0],
			UsedPct:    usedPct,
			Available:  fields[2],
			Filesystem: fs,
		})
	}
	return disks
}

func classifyDisk(usedPct float64, cfg *config.HealthConfig) Level {
	switch {
	case cfg.DiskCritPct > 0 && usedPct >= cfg.DiskCritPct:
		return LevelCritical
	case cfg.DiskWarnPct > 0 && usedPct >= cfg.DiskWarnPct:
		return LevelWarning
	default:
		return LevelOK
	}
}

// collectServicesDown reports configured critical services that exist
// on this host, are enabled at boot, yet are not running.
func collectServicesDown(ctx context.Context, services []string) []ServiceInfo {
	if !system.CommandExists("systemctl") {
		return nil
	}
	var down []ServiceInfo
	for _, svc := range services {
		res, err := system.RunCommand(ctx, system.TimeoutShort, "systemctl", "cat", svc)
		if err != nil || res == nil || !res.Success {
			continue // not installed here
		}
		active := system.IsServiceActive(ctx, svc)
		enabled := system.IsServiceEnabled(ctx, svc)
		if enabled && !active {
			down = append(down, ServiceInfo{Name: svc, Active: active, Enabled: enabled})
		}
	}
	return down
}

func collectFailedUnits(ctx context.Context) []string {
	res, err := system.RunCommand(ctx, system.TimeoutShort, "systemctl", "list-units", "--state=failed", "--no-pager", "--no-legend")
	if err != nil || res == nil || !res.Success {
		return nil
	}
	var failed []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimPrefix(fields[0], "●")
		if name = strings.TrimSpace(name); name != "" {
			failed = append(failed, name)
		}
	}
	return failed
}

func collectOOMKills(ctx context.Context) int {
	res, err := system.RunCommand(ctx, system.TimeoutMedium, "journalctl", "--since", "1 hour ago", "-k", "--no-pager")
	if err != nil || res == nil || !res.Success {
		return 0
	}
	return strings.Count(res.Stdout, "Out of memory") + strings.Count(res.Stdout, "oom-kill")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
