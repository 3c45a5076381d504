package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForBoardZybo(t *testing.T) {
	c, err := ForBoard("zybo")
	require.NoError(t, err)
	assert.Equal(t, Card{Name: "ZYBO SSM2602", Compatible: "zybo-ssm2602-snd"}, c.Card)
	assert.Equal(t, uint16(0x1a), c.Codec.Address)
	assert.Equal(t, []uint32{48000, 44100}, c.Rates)
	assert.NoError(t, c.Validate())
}

func TestForBoardUnknown(t *testing.T) {
	_, err := ForBoard("nope")
	assert.Error(t, err)
}

func TestLoadOverlaysFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "zybo-sound.yaml")
	body := "hwdesc: ./board.yaml\nlog:\n  level: debug\nmetrics:\n  listen: \":9100\"\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	c, err := Load("zybo", p)
	require.NoError(t, err)
	assert.Equal(t, "./board.yaml", c.HWDesc)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, ":9100", c.Metrics.Listen)
	// board defaults survive the overlay
	assert.Equal(t, "ZYBO SSM2602", c.Card.Name)
	assert.Equal(t, "text", c.Log.Format)
}

func TestLoadOverrideLookup(t *testing.T) {
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(board string) ([]byte, bool) {
		return []byte("card:\n  name: x\n"), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = old })

	_, err := Load("any", "")
	assert.ErrorContains(t, err, "card.compatible")
}
