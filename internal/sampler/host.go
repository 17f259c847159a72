package sampler

import (
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
)

// HostInfo reads hostname, uptime and load for the tile footer. Missing
// values are left zero.
func HostInfo() model.Host {
	var h model.Host
	if info, err := host.Info(); err == nil && info != nil {
		h.Hostname = info.Hostname
		h.Platform = info.Platform
		h.Uptime = time.Duration(info.Uptime) * time.Second
	}
	if avg, err := load.Avg(); err == nil && avg != nil {
		h.Load1 = avg.Load1
	}
	return h
}
