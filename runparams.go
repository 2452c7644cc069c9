package air

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// RunParameters are the per-step parameters a host supplies alongside a
// script and its traces (§4.H "Top-level runner"): which peer is running,
// who initiated the particle, when, and for how long it may run.
type RunParameters struct {
	CurrentPeerID string        `mapstructure:"current_peer_id"`
	InitPeerID    string        `mapstructure:"init_peer_id"`
	Timestamp     time.Time     `mapstructure:"timestamp"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// DecodeRunParameters builds a RunParameters from a generic map, the way
// a host embedding this interpreter (e.g. from a config file or an RPC
// payload) would hand it over. Unknown keys are an error, matching the
// strict decoding the teacher's config layer uses.
func DecodeRunParameters(raw map[string]interface{}) (RunParameters, error) {
	var params RunParameters

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &params,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return RunParameters{}, fmt.Errorf("air: cannot build run parameters decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return RunParameters{}, fmt.Errorf("air: invalid run parameters: %w", err)
	}

	return params, nil
}
