package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/devstop/internal/config"
	"github.com/yairfalse/devstop/internal/inventory"
	"github.com/yairfalse/devstop/internal/inventory/memory"
	"github.com/yairfalse/devstop/pkg/instance"
)

func useInventory(t *testing.T, inv *memory.Inventory) *string {
	t.Helper()
	var region string
	prev := newInventory
	newInventory = func(_ context.Context, cfg *config.Config) (inventory.Inventory, error) {
		region = cfg.AWS.Region
		return inv, nil
	}
	t.Cleanup(func() {
		newInventory = prev
		configPath = ""
		regionFlag = ""
	})
	t.Setenv(config.EnvRegion, "")
	t.Setenv(config.EnvLogLevel, "disabled")
	t.Setenv(config.EnvOTELEndpoint, "")
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
	return &region
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func dev(id string) instance.Instance {
	return instance.Instance{ID: id, State: instance.StateRunning, Tags: map[string]string{"Environment": "Dev"}}
}

func TestRun(t *testing.T) {
	inv := memory.New(dev("i-1"), dev("i-2"))
	region := useInventory(t, inv)

	out, err := execute(t, "run")
	require.NoError(t, err)

	var got struct {
		StatusCode int    `json:"statusCode"`
		Body       string `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, "Successfully initiated stop for 2 instances: i-1, i-2", got.Body)
	assert.Equal(t, config.DefaultRegion, *region)
}

func TestRun_RegionFlag(t *testing.T) {
	region := useInventory(t, memory.New())

	_, err := execute(t, "run", "--region", "eu-central-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", *region)
}

func TestRun_RegionFromEnv(t *testing.T) {
	region := useInventory(t, memory.New())
	t.Setenv(config.EnvRegion, "ap-south-1")

	_, err := execute(t, "run")
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", *region)
}

func TestRun_ConfigFile(t *testing.T) {
	region := useInventory(t, memory.New())

	path := filepath.Join(t.TempDir(), "devstop.toml")
	require.NoError(t, os.WriteFile(path, []byte("[aws]\nregion = \"us-west-1\"\n"), 0644))

	_, err := execute(t, "run", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "us-west-1", *region)
}

func TestRun_ListFailure(t *testing.T) {
	inv := memory.New(dev("i-1"))
	inv.FailList(errors.New("access denied"))
	useInventory(t, inv)

	out, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, out, `"statusCode": 500`)
	assert.Empty(t, inv.StopCalls())
}

func TestList(t *testing.T) {
	inv := memory.New(dev("i-1"), instance.Instance{ID: "i-2", State: instance.StateRunning})
	useInventory(t, inv)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "i-1\trunning\n", out)
	assert.Empty(t, inv.StopCalls())
}

func TestList_Empty(t *testing.T) {
	useInventory(t, memory.New())

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No instances found to stop.\n", out)
}

func TestInLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")
	assert.False(t, inLambda())

	t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")
	assert.True(t, inLambda())
}
