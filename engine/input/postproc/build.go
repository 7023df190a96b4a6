package postproc

import (
	"github.com/hubastard/grovetouch/engine/config"
	"github.com/hubastard/grovetouch/engine/input"
)

// FromConfig builds the stage chain described by cfg. The order is fixed:
// ignore zones, dejitter, retain, double tap, coalesce.
func FromConfig(cfg config.Postproc) []input.Stage {
	var stages []input.Stage
	if len(cfg.Ignore) > 0 {
		zones := make([]Zone, len(cfg.Ignore))
		for i, z := range cfg.Ignore {
			zones[i] = Zone{z.X1, z.Y1, z.X2, z.Y2}
		}
		stages = append(stages, NewIgnoreList(zones...))
	}
	if cfg.JitterDistance > 0 {
		stages = append(stages, NewDejitter(cfg.JitterDistance, cfg.JitterIgnoreDevices...))
	}
	if cfg.RetainTime.Duration > 0 {
		stages = append(stages, NewRetain(cfg.RetainTime.Duration, cfg.RetainDistance))
	}
	if cfg.DoubleTapTime.Duration > 0 {
		stages = append(stages, NewDoubleTap(cfg.DoubleTapTime.Duration, cfg.DoubleTapDistance))
	}
	if cfg.Coalesce {
		stages = append(stages, Coalesce{})
	}
	return stages
}
