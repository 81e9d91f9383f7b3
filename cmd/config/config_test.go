package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"ldopa/internal/testutil"
)

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("builder:\n  window_size: 3\ncondenser:\n  theta: 0.25\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Builder.WindowSize != 3 {
		t.Fatalf("expected window size 3, got %d", AppConfig.Builder.WindowSize)
	}
	if AppConfig.Condenser.Theta != 0.25 {
		t.Fatalf("expected theta 0.25, got %v", AppConfig.Condenser.Theta)
	}
}

func TestLoadConfigSandboxOverride(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := sb.WriteFile("config/default.yaml", []byte("synthesis:\n  max_states: 20\n  self_loop_policy: ignore\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := sb.WriteFile("config/staging.yaml", []byte("synthesis:\n  self_loop_policy: process\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("staging")

	if AppConfig.Synthesis.MaxStates != 20 {
		t.Fatalf("expected max_states to survive from the default layer, got %d", AppConfig.Synthesis.MaxStates)
	}
	if AppConfig.Synthesis.SelfLoopPolicy != "process" {
		t.Fatalf("expected self_loop_policy overridden to process, got %s", AppConfig.Synthesis.SelfLoopPolicy)
	}
}
