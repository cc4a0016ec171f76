// Package phasesync keeps bass phase-aligned with the kick drum in real time.
//
// A kick sidechain drives a detector; for every kick the engine measures
// where the bass energy peaks after it, converts that delay into the phase
// that cancels it at a center frequency, and steers a chain of all-pass
// filters toward that phase before the next kick arrives. The bass path is
// delayed by a fixed lookahead so each kick's correction is known before the
// kick is heard.
//
// # Features
//
//   - Envelope-following kick detector with an adaptive threshold
//   - Sliding-window RMS bass analysis with SIMD seeding via github.com/tphakala/simd
//   - Exact-phase all-pass rotator of up to 16 stages, unit magnitude
//   - Four adaptation modes: immediate, linear drift, exponential, last moment
//   - Tempo prediction from the median of recent kick intervals
//   - Up to 16 stereo bass tracks against one sidechain
//   - Lock-free parameter updates and telemetry, no allocations per block
//
// # Quick Start
//
// For one-shot offline alignment:
//
//	cfg := phasesync.DefaultConfig(48000)
//	left, right, err := phasesync.AlignStereo(kick, bassL, bassR, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming, build an engine and call Process once per block:
//
//	cfg := phasesync.DefaultConfig(48000)
//	cfg.AdaptationMode = phasesync.LastMoment
//	e, err := phasesync.New(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for block := range blocks {
//	    in := []phasesync.StereoBuffer{{Left: block.BassL, Right: block.BassR}}
//	    out := []phasesync.StereoBuffer{{Left: outL, Right: outR}}
//	    if err := e.Process(block.Kick, in, out); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Output is delayed by [Engine.Latency] samples, which equals LookaheadMs.
//
// # Adaptation Modes
//
//   - [Immediate]: jump to the new phase when the kick is heard.
//   - [LinearDrift]: move evenly so the phase lands on the next kick.
//   - [Exponential]: ease in, most of the movement near the next kick.
//   - [LastMoment]: hold, then move in the last part of the interval set
//     by TransitionThresholdPercent.
//
// # Thread Safety
//
// [Engine.Process] and [Engine.Reset] must be serialized on one goroutine.
// [Engine.Update], [Engine.Telemetry] and [Engine.Info] may be called from
// any goroutine; updates take effect at the start of the next block.
package phasesync
