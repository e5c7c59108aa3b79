package checks

import (
	"context"
	"os"

	"github.com/girste/hardhound/internal/config"
	"github.com/girste/hardhound/internal/system"
)

// Env carries the host facts and configuration shared by all checks
// during a run. It is built once and treated as read-only.
type Env struct {
	Config *config.Config
	Distro string
	Root   bool
}

// NewEnv probes the host once and binds the configuration
func NewEnv(ctx context.Context, cfg *config.Config) *Env {
	return &Env{
		Config: cfg,
		Distro: system.GetDistro(ctx),
		Root:   os.Geteuid() == 0,
	}
}
