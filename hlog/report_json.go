package hlog

import (
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Report is the JSON report structure written for main's -json-report flag — phase
// timings, final HUI count, and a copy of the run configuration, mirroring
// the teacher's own JSON-via-sonnet serialization of its session state.
type Report struct {
	Config    map[string]any `json:"config"`
	Phases    []TimePoint    `json:"phases"`
	HUICount  int            `json:"hui_count"`
	WallClock time.Duration  `json:"wall_clock_ns"`
}

// WriteJSONReport marshals a Report with sonnet (the teacher's JSON
// library of choice) to path.
func WriteJSONReport(path string, l *Logger, config map[string]any, huiCount int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := Report{
		Config:    config,
		Phases:    l.TimePoints(),
		HUICount:  huiCount,
		WallClock: time.Since(l.start),
	}
	enc := sonnet.NewEncoder(f)
	return enc.Encode(r)
}
