package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig(DefaultAppSettings())

	assert.True(t, config.Enabled)
	assert.Len(t, config.TaskConfigs, 2)

	resync := config.TaskConfigs[TaskIDRootResync]
	assert.True(t, resync.Enabled)
	assert.Equal(t, 5*time.Minute, resync.Interval)

	sweep := config.TaskConfigs[TaskIDSessionSweep]
	assert.True(t, sweep.Enabled)
	assert.Equal(t, time.Minute, sweep.Interval)
}

func TestDefaultSchedulerConfig_ZeroIntervalDisables(t *testing.T) {
	settings := DefaultAppSettings()
	settings.Sync.Interval = 0

	config := DefaultSchedulerConfig(settings)
	assert.False(t, config.GetTaskConfig(TaskIDRootResync).Enabled)
	assert.True(t, config.GetTaskConfig(TaskIDSessionSweep).Enabled)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig(DefaultAppSettings())

	unknownCfg := config.GetTaskConfig("unknown-task")
	assert.False(t, unknownCfg.Enabled)
	assert.Equal(t, time.Duration(0), unknownCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{
		Enabled:     true,
		TaskConfigs: nil,
	}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestTaskConstants(t *testing.T) {
	assert.Equal(t, "root-resync", TaskIDRootResync)
	assert.Equal(t, "session-sweep", TaskIDSessionSweep)
}
