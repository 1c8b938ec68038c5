package tools_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MostTP/EduWave-Backend/internal/tools"
)

func TestRegistry_UnknownTool(t *testing.T) {
	r := tools.DefaultRegistry()

	_, err := r.Run("nope", nil)
	require.ErrorIs(t, err, tools.ErrUnknownTool)
}

func TestRegistry_ListsBuiltins(t *testing.T) {
	r := tools.DefaultRegistry()

	list := r.List()
	require.Len(t, list, 3)
	require.Equal(t, "cgpa-calculator", list[0].ID)
}

func TestCGPACalculator(t *testing.T) {
	r := tools.DefaultRegistry()

	out, err := r.Run("cgpa-calculator", map[string]any{
		"courses": []any{
			map[string]any{"credits": 4.0, "gradePoint": 9.0},
			map[string]any{"credits": 2.0, "gradePoint": 6.0},
		},
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	// (4*9 + 2*6) / 6 = 8
	require.Equal(t, 8.0, result["cgpa"])
	require.Equal(t, 6.0, result["totalCredits"])
}

func TestCGPACalculator_InvalidParams(t *testing.T) {
	r := tools.DefaultRegistry()

	cases := []map[string]any{
		{},
		{"courses": []any{}},
		{"courses": []any{map[string]any{"credits": 0.0, "gradePoint": 5.0}}},
		{"courses": []any{map[string]any{"credits": 3.0, "gradePoint": 11.0}}},
		{"courses": []any{map[string]any{"credits": "three", "gradePoint": 5.0}}},
	}
	for _, params := range cases {
		_, err := r.Run("cgpa-calculator", params)
		require.Error(t, err)
		require.True(t, tools.IsParamError(err), "expected a parameter error for %v", params)
	}
}

func TestStudyPlanner(t *testing.T) {
	r := tools.DefaultRegistry()

	out, err := r.Run("study-planner", map[string]any{
		"hoursPerDay": 4.0,
		"days":        5.0,
		"subjects": []any{
			map[string]any{"name": "Math", "weight": 3.0},
			map[string]any{"name": "History", "weight": 1.0},
		},
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	require.Equal(t, 20.0, result["totalHours"])

	plan := result["plan"].([]map[string]any)
	require.Len(t, plan, 2)
	require.Equal(t, "Math", plan[0]["subject"])
	require.Equal(t, 15.0, plan[0]["totalHours"])
	require.Equal(t, 5.0, plan[1]["totalHours"])
}

func TestAttendanceTracker(t *testing.T) {
	r := tools.DefaultRegistry()

	out, err := r.Run("attendance-tracker", map[string]any{
		"attended": 30.0, "held": 40.0, "targetPercent": 80.0,
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	require.Equal(t, 75.0, result["currentPercent"])
	// (0.8*40 - 30) / 0.2 = 10
	require.Equal(t, 10, result["classesNeeded"])

	out, err = r.Run("attendance-tracker", map[string]any{
		"attended": 38.0, "held": 40.0, "targetPercent": 80.0,
	})
	require.NoError(t, err)
	result = out.(map[string]any)
	// 38/0.8 - 40 = 7.5 -> 7
	require.Equal(t, 7, result["classesCanSkip"])
}

func TestAttendanceTracker_ExactBoundaries(t *testing.T) {
	r := tools.DefaultRegistry()

	// 40/50 is exactly 80%; the answer must not overshoot to 11 from float
	// error in 0.8*40.
	out, err := r.Run("attendance-tracker", map[string]any{
		"attended": 30.0, "held": 40.0, "targetPercent": 80.0,
	})
	require.NoError(t, err)
	require.Equal(t, 10, out.(map[string]any)["classesNeeded"])

	// 40/50 lands exactly on target from the other side: 5 skippable.
	out, err = r.Run("attendance-tracker", map[string]any{
		"attended": 40.0, "held": 45.0, "targetPercent": 80.0,
	})
	require.NoError(t, err)
	require.Equal(t, 5, out.(map[string]any)["classesCanSkip"])
}
