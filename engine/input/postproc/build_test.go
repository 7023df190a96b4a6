package postproc

import (
	"testing"
	"time"

	"github.com/hubastard/grovetouch/engine/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Postproc
	stages := FromConfig(cfg)
	if len(stages) != 2 {
		t.Fatalf("expected double tap and coalesce, got %d stages", len(stages))
	}
	if _, ok := stages[0].(*DoubleTap); !ok {
		t.Errorf("expected DoubleTap first, got %T", stages[0])
	}

	cfg.Ignore = []config.Zone{{X2: 0.1, Y2: 0.1}}
	cfg.JitterDistance = 0.01
	cfg.RetainTime = config.Duration{Duration: 100 * time.Millisecond}
	stages = FromConfig(cfg)
	if len(stages) != 5 {
		t.Fatalf("expected 5 stages, got %d", len(stages))
	}
	if _, ok := stages[0].(*IgnoreList); !ok {
		t.Errorf("expected IgnoreList first, got %T", stages[0])
	}
	if _, ok := stages[2].(*Retain); !ok {
		t.Errorf("expected Retain third, got %T", stages[2])
	}
}
