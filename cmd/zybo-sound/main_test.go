package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zybo-sound/errcode"
	"zybo-sound/services/config"
	"zybo-sound/x/logx"
)

func zyboConfig(t *testing.T, hwdesc string) config.Config {
	t.Helper()
	cfg, err := config.ForBoard("zybo")
	require.NoError(t, err)
	cfg.HWDesc = hwdesc
	cfg.Rates = []uint32{48000, 44100, 192000}
	return cfg
}

func TestRunProbesAndTearsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, run(ctx, zyboConfig(t, "zybo.yaml"), logx.Discard()))
}

func TestRunWithoutMatchingNode(t *testing.T) {
	cfg := zyboConfig(t, "zybo.yaml")
	cfg.Card.Compatible = "other-board-snd"

	err := run(context.Background(), cfg, logx.Discard())
	assert.Equal(t, errcode.MissingHardwareReference, errcode.Of(err), "%v", err)
}

func TestRunMissingDescription(t *testing.T) {
	assert.Error(t, run(context.Background(), zyboConfig(t, "absent.yaml"), logx.Discard()))
}
