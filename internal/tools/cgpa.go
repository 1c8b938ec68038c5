package tools

import "math"

// CGPACalculator computes a credit-weighted grade point average on a
// 10-point scale.
type CGPACalculator struct{}

func (CGPACalculator) ID() string    { return "cgpa-calculator" }
func (CGPACalculator) Title() string { return "CGPA Calculator" }

func (CGPACalculator) Description() string {
	return "Computes a cumulative grade point average from per-course credits and grade points."
}

func (CGPACalculator) Run(params map[string]any) (any, error) {
	courses, err := listParam(params, "courses")
	if err != nil {
		return nil, err
	}

	var totalCredits, weighted float64
	for i, course := range courses {
		credits, err := floatParam(course, "credits")
		if err != nil {
			return nil, paramErrorf("courses[%d]: %v", i, err)
		}
		gradePoint, err := floatParam(course, "gradePoint")
		if err != nil {
			return nil, paramErrorf("courses[%d]: %v", i, err)
		}

		if credits <= 0 {
			return nil, paramErrorf("courses[%d]: credits must be positive", i)
		}
		if gradePoint < 0 || gradePoint > 10 {
			return nil, paramErrorf("courses[%d]: gradePoint must be between 0 and 10", i)
		}

		totalCredits += credits
		weighted += credits * gradePoint
	}

	cgpa := weighted / totalCredits
	return map[string]any{
		"cgpa":         math.Round(cgpa*100) / 100,
		"totalCredits": totalCredits,
		"courseCount":  len(courses),
	}, nil
}
