package conflict

import (
	"testing"
	"time"

	"rosterd/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func at(d time.Time, min int) time.Time {
	return d.Add(time.Duration(min) * time.Minute)
}

func workingDay() model.DaySchedule {
	return model.DaySchedule{
		WorkingHours: model.WorkingHours{Start: 540, End: 1260},
		BreakTimes:   []model.BreakWindow{{Start: 720, End: 780, Name: "lunch"}},
	}
}

func TestFindConflicts_AllReasonsReported(t *testing.T) {
	tuesday := date(2024, time.June, 4)
	contractEnd := date(2024, time.May, 1)

	existing := []model.ScheduleEvent{
		{
			ID:        "ev1",
			StaffID:   "kim",
			StartTime: at(tuesday, 700),
			EndTime:   at(tuesday, 760),
			Status:    model.StatusActive,
		},
	}

	// Candidate 11:50-12:40: outside contract, hits the break and ev1.
	got, err := FindConflicts(Candidate{
		StaffID: "kim",
		Start:   at(tuesday, 710),
		End:     at(tuesday, 760),
	}, workingDay(), model.ContractWindow{End: &contractEnd}, existing)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, ReasonOutsideContract, got[0].Reason)
	assert.Equal(t, ReasonBreak, got[1].Reason)
	assert.Equal(t, ReasonOverlap, got[2].Reason)
	require.NotNil(t, got[2].Event)
	assert.Equal(t, "ev1", got[2].Event.ID)
}

func TestFindConflicts_HolidaySuppressesHoursChecks(t *testing.T) {
	sunday := date(2024, time.June, 2)
	got, err := FindConflicts(Candidate{
		StaffID: "lee",
		Start:   at(sunday, 600),
		End:     at(sunday, 660),
	}, model.DaySchedule{IsHoliday: true}, model.ContractWindow{}, nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, ReasonHoliday, got[0].Reason)
}

func TestFindConflicts_OverlapsSortedAndFiltered(t *testing.T) {
	tuesday := date(2024, time.June, 4)
	existing := []model.ScheduleEvent{
		{ID: "late", StaffID: "kim", StartTime: at(tuesday, 660), EndTime: at(tuesday, 720), Status: model.StatusActive},
		{ID: "early", StaffID: "kim", StartTime: at(tuesday, 600), EndTime: at(tuesday, 660), Status: model.StatusActive},
		{ID: "cancelled", StaffID: "kim", StartTime: at(tuesday, 600), EndTime: at(tuesday, 720), Status: model.StatusCancelled},
		{ID: "other-staff", StaffID: "park", StartTime: at(tuesday, 600), EndTime: at(tuesday, 720), Status: model.StatusActive},
	}

	got, err := FindConflicts(Candidate{
		StaffID: "kim",
		Start:   at(tuesday, 610),
		End:     at(tuesday, 700),
	}, workingDay(), model.ContractWindow{}, existing)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].Event.ID)
	assert.Equal(t, "late", got[1].Event.ID)
}

func TestFindConflicts_EditExcludesSelf(t *testing.T) {
	tuesday := date(2024, time.June, 4)
	existing := []model.ScheduleEvent{
		{ID: "me", StaffID: "kim", StartTime: at(tuesday, 600), EndTime: at(tuesday, 660), Status: model.StatusActive},
	}

	// Moving "me" 30 minutes later overlaps only its own stored copy.
	got, err := FindConflicts(Candidate{
		ID:      "me",
		StaffID: "kim",
		Start:   at(tuesday, 630),
		End:     at(tuesday, 690),
	}, workingDay(), model.ContractWindow{}, existing)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindConflicts_OutOfHours(t *testing.T) {
	tuesday := date(2024, time.June, 4)
	got, err := FindConflicts(Candidate{
		StaffID: "kim",
		Start:   at(tuesday, 480), // 08:00
		End:     at(tuesday, 570),
	}, workingDay(), model.ContractWindow{}, nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, ReasonOutOfHours, got[0].Reason)
}

func TestFindConflicts_Validation(t *testing.T) {
	tuesday := date(2024, time.June, 4)

	_, err := FindConflicts(Candidate{
		StaffID: "kim",
		Start:   at(tuesday, 660),
		End:     at(tuesday, 600),
	}, workingDay(), model.ContractWindow{}, nil)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = FindConflicts(Candidate{
		StaffID: "kim",
		Start:   at(tuesday, 1400),
		End:     at(tuesday, 1500), // crosses midnight
	}, workingDay(), model.ContractWindow{}, nil)
	assert.Error(t, err)
}

func TestFindConflicts_CleanCandidateHasNoConflicts(t *testing.T) {
	tuesday := date(2024, time.June, 4)
	got, err := FindConflicts(Candidate{
		StaffID: "kim",
		Start:   at(tuesday, 600),
		End:     at(tuesday, 660),
	}, workingDay(), model.ContractWindow{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
