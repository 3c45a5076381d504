package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (--board flag)
// Val: raw YAML for that board
// -----------------------------------------------------------------------------

const cfgZybo = `
card:
  name: ZYBO SSM2602
  compatible: zybo-ssm2602-snd
hwdesc: /etc/zybo-sound/zybo.yaml
codec:
  address: 0x1a
log:
  level: info
  format: text
metrics:
  listen: ""
rates: [48000, 44100]
`

var embeddedConfigs = map[string][]byte{
	"zybo": []byte(cfgZybo),
}
