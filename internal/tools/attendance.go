package tools

import "math"

// AttendanceTracker reports current attendance and how many consecutive
// classes must be attended (or can be skipped) to sit at the target.
type AttendanceTracker struct{}

func (AttendanceTracker) ID() string    { return "attendance-tracker" }
func (AttendanceTracker) Title() string { return "Attendance Tracker" }

func (AttendanceTracker) Description() string {
	return "Computes attendance percentage and distance from a target percentage."
}

func (AttendanceTracker) Run(params map[string]any) (any, error) {
	attended, err := floatParam(params, "attended")
	if err != nil {
		return nil, err
	}
	held, err := floatParam(params, "held")
	if err != nil {
		return nil, err
	}
	target, err := floatParam(params, "targetPercent")
	if err != nil {
		return nil, err
	}

	if held <= 0 || attended < 0 || attended > held {
		return nil, paramErrorf("attended must be between 0 and held, and held must be positive")
	}
	if target <= 0 || target >= 100 {
		return nil, paramErrorf("targetPercent must be between 0 and 100 exclusive")
	}

	current := attended / held * 100
	ratio := target / 100

	result := map[string]any{
		"currentPercent": math.Round(current*100) / 100,
		"targetPercent":  target,
	}

	// The epsilon absorbs float error at exact boundaries, e.g. 30/40 at a
	// target of 80% needs 10 classes, not 11, even though 0.8*40 is not
	// exactly representable.
	const eps = 1e-9

	if current >= target {
		// classes that can be skipped while staying at or above target:
		// attended / (held + x) >= ratio
		canSkip := math.Floor(attended/ratio - held + eps)
		result["classesCanSkip"] = int(math.Max(canSkip, 0))
	} else {
		// classes to attend in a row to reach target:
		// (attended + x) / (held + x) >= ratio
		needed := math.Ceil((ratio*held-attended)/(1-ratio) - eps)
		result["classesNeeded"] = int(needed)
	}

	return result, nil
}
