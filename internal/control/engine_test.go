package control

import (
	"context"
	"testing"
	"time"

	"github.com/loadline/dispatch/internal/core/config"
	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/dispatch"
)

func memoryConfig() *config.AppConfig {
	return &config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Dispatch: config.DispatchConfig{
			ComplianceWarnDays: 30,
			MaxRetries:         3,
			RetryBaseDelay:     time.Millisecond,
			RetryMaxDelay:      10 * time.Millisecond,
			ErrorLogSize:       50,
		},
	}
}

func TestNewEngine_MemoryMode(t *testing.T) {
	engine, err := NewEngine(memoryConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if engine.Service() == nil {
		t.Fatal("expected a wired dispatch service")
	}
	if engine.Store().Loads == nil || engine.Store().Drivers == nil || engine.Store().Vehicles == nil {
		t.Fatal("expected all repositories wired")
	}
}

func TestEngine_MemoryModeEndToEnd(t *testing.T) {
	engine, err := NewEngine(memoryConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx := context.Background()
	res := engine.Service().CreateLoad(ctx, "org-1", dispatch.CreateLoadInput{
		Cargo:             domain.Cargo{WeightLbs: 12000, EquipmentType: "dry_van"},
		ScheduledPickup:   time.Now().Add(24 * time.Hour),
		ScheduledDelivery: time.Now().Add(48 * time.Hour),
	})
	if !res.OK() {
		t.Fatalf("CreateLoad failed: validation=%v err=%v", res.Validation, res.Err)
	}
	if res.Load.Status != domain.LoadStatusPending {
		t.Errorf("expected pending, got %s", res.Load.Status)
	}
}
