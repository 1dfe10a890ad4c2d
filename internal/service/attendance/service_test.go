package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*3600)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newService(t *testing.T, policy Policy) (attendance.AttendanceService, *testClock) {
	t.Helper()

	store := memory.NewStore()
	store.PutEmployee(employee.Employee{ID: "emp-1", FullName: "Eka Staff", Role: employee.RoleEmployee, IsActive: true})
	store.PutEmployee(employee.Employee{ID: "emp-gone", FullName: "Gone", Role: employee.RoleEmployee, IsActive: false})
	store.PutShift(attendance.Shift{ID: "day", Name: "Day", StartTime: "09:00", EndTime: "18:00", BreakMinutes: 60})
	store.PutShift(attendance.Shift{ID: "night", Name: "Night", StartTime: "22:00", EndTime: "06:00", BreakMinutes: 30})

	clock := &testClock{}
	if policy.Location == nil {
		policy.Location = wib
	}
	svc := NewAttendanceService(
		store,
		memory.NewAttendanceRepository(store),
		memory.NewShiftRepository(store),
		memory.NewEmployeeRepository(store),
		policy,
		WithClock(clock.Now),
	)
	return svc, clock
}

func strPtr(s string) *string { return &s }

func TestClockInClockOut_DayShift(t *testing.T) {
	svc, clock := newService(t, Policy{})
	ctx := context.Background()

	clock.Set(time.Date(2025, 10, 1, 9, 10, 0, 0, wib))
	in, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1", ShiftID: strPtr("day")})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusInProgress, in.Status)
	assert.Equal(t, "2025-10-01", in.Date)
	require.NotNil(t, in.ShiftName)
	assert.Equal(t, "Day", *in.ShiftName)

	clock.Set(time.Date(2025, 10, 1, 18, 30, 0, 0, wib))
	out, err := svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCompleted, out.Status)
	assert.Equal(t, int64(600), out.LateBySeconds)
	assert.Equal(t, int64(33600), out.DurationSeconds)
	assert.Equal(t, int64(1800), out.OvertimeSeconds)
}

func TestClockIn_Twice(t *testing.T) {
	svc, clock := newService(t, Policy{})
	ctx := context.Background()
	clock.Set(time.Date(2025, 10, 1, 8, 0, 0, 0, wib))

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	clock.Set(time.Date(2025, 10, 1, 13, 0, 0, 0, wib))
	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestClockOut_Errors(t *testing.T) {
	svc, clock := newService(t, Policy{})
	ctx := context.Background()
	clock.Set(time.Date(2025, 10, 1, 8, 0, 0, 0, wib))

	_, err := svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)

	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	clock.Set(time.Date(2025, 10, 1, 17, 0, 0, 0, wib))
	out, err := svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(9*3600), out.DurationSeconds)
	assert.Zero(t, out.LateBySeconds)
	assert.Zero(t, out.OvertimeSeconds)

	_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
}

func TestClockOut_OvernightShift(t *testing.T) {
	svc, clock := newService(t, Policy{})
	ctx := context.Background()

	clock.Set(time.Date(2025, 10, 1, 21, 55, 0, 0, wib))
	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1", ShiftID: strPtr("night")})
	require.NoError(t, err)

	clock.Set(time.Date(2025, 10, 2, 6, 45, 0, 0, wib))
	out, err := svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, "2025-10-01", out.Date)
	assert.Zero(t, out.LateBySeconds)
	assert.Equal(t, int64(45*60), out.OvertimeSeconds)
}

func TestClockOut_PreviousDayOnlyForOvernightShifts(t *testing.T) {
	tests := []struct {
		name    string
		shiftID *string
		in      time.Time
		out     time.Time
	}{
		{
			name:    "day shift left open",
			shiftID: strPtr("day"),
			in:      time.Date(2025, 10, 1, 9, 0, 0, 0, wib),
			out:     time.Date(2025, 10, 2, 8, 0, 0, 0, wib),
		},
		{
			name: "no shift",
			in:   time.Date(2025, 10, 1, 22, 0, 0, 0, wib),
			out:  time.Date(2025, 10, 2, 6, 0, 0, 0, wib),
		},
		{
			name:    "night shift past grace",
			shiftID: strPtr("night"),
			in:      time.Date(2025, 10, 1, 22, 0, 0, 0, wib),
			out:     time.Date(2025, 10, 2, 19, 0, 0, 0, wib),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, clock := newService(t, Policy{})
			ctx := context.Background()

			clock.Set(tt.in)
			_, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1", ShiftID: tt.shiftID})
			require.NoError(t, err)

			clock.Set(tt.out)
			_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
			assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
			assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

			days, err := svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{EmployeeID: "emp-1"})
			require.NoError(t, err)
			require.Len(t, days, 1)
			assert.Nil(t, days[0].ClockOut)
			assert.Equal(t, attendance.StatusInProgress, days[0].Status)
		})
	}
}

func TestClockIn_DefaultShiftAndRules(t *testing.T) {
	svc, clock := newService(t, Policy{DefaultShiftID: "day"})
	ctx := context.Background()
	clock.Set(time.Date(2025, 10, 1, 9, 0, 0, 0, wib))

	in, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1", IsRemote: true, Note: strPtr("wfh")})
	require.NoError(t, err)
	require.NotNil(t, in.ShiftID)
	assert.Equal(t, "day", *in.ShiftID)
	assert.True(t, in.IsRemote)

	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-gone"})
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1", ShiftID: strPtr("missing")})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGetMyAttendance(t *testing.T) {
	svc, clock := newService(t, Policy{})
	ctx := context.Background()

	for _, day := range []int{1, 2, 3} {
		clock.Set(time.Date(2025, 10, day, 9, 0, 0, 0, wib))
		_, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1"})
		require.NoError(t, err)
	}

	all, err := svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-10-03", all[0].Date)

	some, err := svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{
		EmployeeID: "emp-1", From: strPtr("2025-10-02"), To: strPtr("2025-10-02"),
	})
	require.NoError(t, err)
	require.Len(t, some, 1)

	_, err = svc.GetMyAttendance(ctx, attendance.MyAttendanceFilter{EmployeeID: "emp-1", From: strPtr("2025-13-01")})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCloseStale(t *testing.T) {
	svc, clock := newService(t, Policy{})
	ctx := context.Background()

	clock.Set(time.Date(2025, 10, 1, 9, 5, 0, 0, wib))
	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{EmployeeID: "emp-1", ShiftID: strPtr("day")})
	require.NoError(t, err)

	clock.Set(time.Date(2025, 10, 2, 21, 0, 0, 0, wib))
	closed, err := svc.CloseStale(ctx)
	require.NoError(t, err)
	assert.Empty(t, closed, "yesterday's records are not swept yet")

	clock.Set(time.Date(2025, 10, 3, 1, 0, 0, 0, wib))
	closed, err = svc.CloseStale(ctx)
	require.NoError(t, err)
	require.Len(t, closed, 1)

	day := closed[0]
	assert.Equal(t, attendance.StatusAutoClosed, day.Status)
	require.NotNil(t, day.ClockOut)
	assert.True(t, day.ClockOut.Equal(time.Date(2025, 10, 1, 18, 0, 0, 0, wib)))
	assert.Equal(t, int64(300), day.LateBySeconds)
	assert.Zero(t, day.OvertimeSeconds)

	closed, err = svc.CloseStale(ctx)
	require.NoError(t, err)
	assert.Empty(t, closed)

	_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{EmployeeID: "emp-1"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
