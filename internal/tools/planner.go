package tools

import "math"

// StudyPlanner splits a weekly hour budget across subjects in proportion to
// their priority weight.
type StudyPlanner struct{}

func (StudyPlanner) ID() string    { return "study-planner" }
func (StudyPlanner) Title() string { return "Study Planner" }

func (StudyPlanner) Description() string {
	return "Allocates available study hours across subjects by priority."
}

func (StudyPlanner) Run(params map[string]any) (any, error) {
	hoursPerDay, err := floatParam(params, "hoursPerDay")
	if err != nil {
		return nil, err
	}
	days, err := floatParam(params, "days")
	if err != nil {
		return nil, err
	}
	if hoursPerDay <= 0 || hoursPerDay > 24 {
		return nil, paramErrorf("hoursPerDay must be between 0 and 24")
	}
	if days <= 0 || days != math.Trunc(days) {
		return nil, paramErrorf("days must be a positive whole number")
	}

	subjects, err := listParam(params, "subjects")
	if err != nil {
		return nil, err
	}

	var totalWeight float64
	names := make([]string, len(subjects))
	weights := make([]float64, len(subjects))
	for i, subject := range subjects {
		name, ok := subject["name"].(string)
		if !ok || name == "" {
			return nil, paramErrorf("subjects[%d]: name is required", i)
		}
		weight, err := floatParam(subject, "weight")
		if err != nil {
			return nil, paramErrorf("subjects[%d]: %v", i, err)
		}
		if weight <= 0 {
			return nil, paramErrorf("subjects[%d]: weight must be positive", i)
		}
		names[i] = name
		weights[i] = weight
		totalWeight += weight
	}

	totalHours := hoursPerDay * days
	plan := make([]map[string]any, len(subjects))
	for i := range subjects {
		share := weights[i] / totalWeight
		plan[i] = map[string]any{
			"subject":     names[i],
			"totalHours":  math.Round(totalHours*share*10) / 10,
			"hoursPerDay": math.Round(hoursPerDay*share*10) / 10,
		}
	}

	return map[string]any{
		"totalHours": totalHours,
		"days":       days,
		"plan":       plan,
	}, nil
}
