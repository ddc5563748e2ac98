package main

import (
	"testing"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/stretchr/testify/assert"
)

func TestNewCLIRegistersCommands(t *testing.T) {
	cli := NewCLI()

	names := make([]string, 0)
	for _, c := range cli.cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"start", "workers", "migrate", "config"})

	migrateCmd, _, err := cli.cmd.Find([]string{"migrate", "up"})
	assert.NoError(t, err)
	assert.Equal(t, "up", migrateCmd.Name())
}

func TestInitializeQueues(t *testing.T) {
	cfg := &config.Configuration{Queue: config.QueueConfig{LeadQueue: "lead_processing", ConversionQueue: "conversion_webhooks"}}
	assert.Equal(t, map[string]int{"lead_processing": 3, "conversion_webhooks": 1}, initializeQueues(cfg))
}

func TestInitializePostHogWithoutKey(t *testing.T) {
	assert.Nil(t, initializePostHog(&config.Configuration{}))
}
