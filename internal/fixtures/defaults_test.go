package fixtures

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultShifts_AreWellFormed(t *testing.T) {
	for _, sh := range DefaultShifts() {
		assert.True(t, validator.IsValidUUID(sh.ID), sh.Name)
		assert.True(t, validator.IsValidClock(sh.StartTime), sh.Name)
		assert.True(t, validator.IsValidClock(sh.EndTime), sh.Name)
		_, err := sh.ExpectedDuration()
		assert.NoError(t, err, sh.Name)
	}
}

func TestDemoOrganization_ReportingTree(t *testing.T) {
	org := DemoOrganization()
	byID := make(map[string]bool, len(org))
	for _, e := range org {
		byID[e.ID] = true
	}
	for _, e := range org {
		assert.True(t, validator.IsValidUUID(e.ID), e.FullName)
		assert.True(t, e.Role.IsValid(), e.FullName)
		if e.TeamLeadID != nil {
			assert.True(t, byID[*e.TeamLeadID], "%s reports to an unknown lead", e.FullName)
		}
	}
}

func TestDefaultLeaveTypes_IDsAreUUIDv7(t *testing.T) {
	for _, lt := range DefaultLeaveTypes() {
		assert.True(t, validator.IsValidUUID(lt.ID), lt.Name)
		assert.False(t, lt.Allocation.IsNegative(), lt.Name)
	}
}

func TestSeedDefaults_MemoryStore(t *testing.T) {
	store := memory.NewStore()
	org := DemoOrganization()
	SeedDefaults(store, org)

	ctx := context.Background()
	annual, err := memory.NewLeaveTypeRepository(store).GetByID(ctx, LeaveTypeAnnualID)
	require.NoError(t, err)
	assert.True(t, annual.IsActive)

	balances := memory.NewLeaveBalanceRepository(store)
	b, err := balances.GetByEmployeeAndType(ctx, org[3].ID, LeaveTypeAnnualID)
	require.NoError(t, err)
	assert.Equal(t, "12", b.TotalAllocated.String())

	_, err = balances.GetByEmployeeAndType(ctx, org[3].ID, LeaveTypeSickID)
	assert.ErrorIs(t, err, leave.ErrLeaveBalanceNotFound)

	_, err = memory.NewShiftRepository(store).GetByID(ctx, ShiftNightID)
	assert.NoError(t, err)
}
