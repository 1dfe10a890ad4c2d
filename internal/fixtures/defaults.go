// Package fixtures holds the default leave catalogue, shifts and a demo
// organisation used to seed a fresh store.
package fixtures

import (
	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

// Seeder is the write side a store exposes for seeding.
type Seeder interface {
	PutEmployee(e employee.Employee)
	PutLeaveType(lt leave.LeaveType)
	PutBalance(b leave.LeaveBalance)
	PutShift(s attendance.Shift)
}

// Stable ids, shared with migrations/002_default_catalog.sql.
const (
	LeaveTypeAnnualID      = "01930000-0000-7000-8000-000000000001"
	LeaveTypeSickID        = "01930000-0000-7000-8000-000000000002"
	LeaveTypeMarriageID    = "01930000-0000-7000-8000-000000000003"
	LeaveTypeMaternityID   = "01930000-0000-7000-8000-000000000004"
	LeaveTypePaternityID   = "01930000-0000-7000-8000-000000000005"
	LeaveTypeBereavementID = "01930000-0000-7000-8000-000000000006"
	LeaveTypeUnpaidID      = "01930000-0000-7000-8000-000000000007"

	ShiftOfficeID    = "01930000-0000-7000-8000-000000000101"
	ShiftAfternoonID = "01930000-0000-7000-8000-000000000102"
	ShiftNightID     = "01930000-0000-7000-8000-000000000103"
)

// DefaultLeaveType pairs a leave type with its yearly allocation. A zero
// allocation means no ledger row is seeded, so approvals skip the debit.
type DefaultLeaveType struct {
	leave.LeaveType
	Allocation decimal.Decimal
}

// DefaultLeaveTypes follows Indonesian labour law defaults.
func DefaultLeaveTypes() []DefaultLeaveType {
	return []DefaultLeaveType{
		{leave.LeaveType{ID: LeaveTypeAnnualID, Name: "Cuti Tahunan", Code: strPtr("ANNUAL"), IsActive: true}, decimal.NewFromInt(12)},
		{leave.LeaveType{ID: LeaveTypeSickID, Name: "Cuti Sakit", Code: strPtr("SICK"), IsActive: true}, decimal.Zero},
		{leave.LeaveType{ID: LeaveTypeMarriageID, Name: "Cuti Menikah", Code: strPtr("MARRIAGE"), IsActive: true}, decimal.NewFromInt(3)},
		{leave.LeaveType{ID: LeaveTypeMaternityID, Name: "Cuti Melahirkan", Code: strPtr("MATERNITY"), IsActive: true}, decimal.NewFromInt(90)},
		{leave.LeaveType{ID: LeaveTypePaternityID, Name: "Cuti Ayah", Code: strPtr("PATERNITY"), IsActive: true}, decimal.NewFromInt(2)},
		{leave.LeaveType{ID: LeaveTypeBereavementID, Name: "Cuti Duka", Code: strPtr("BEREAVEMENT"), IsActive: true}, decimal.NewFromInt(2)},
		{leave.LeaveType{ID: LeaveTypeUnpaidID, Name: "Cuti Tidak Dibayar", Code: strPtr("UNPAID"), IsActive: true}, decimal.Zero},
	}
}

func DefaultShifts() []attendance.Shift {
	return []attendance.Shift{
		{ID: ShiftOfficeID, Name: "Standard Office Hours", StartTime: "09:00", EndTime: "18:00", BreakMinutes: 60},
		{ID: ShiftAfternoonID, Name: "Afternoon Shift", StartTime: "14:00", EndTime: "22:00", BreakMinutes: 30},
		{ID: ShiftNightID, Name: "Night Shift", StartTime: "22:00", EndTime: "06:00", BreakMinutes: 30},
	}
}

// DemoOrganization is a small reporting tree: one HR officer, one manager,
// a team lead and their reports.
func DemoOrganization() []employee.Employee {
	tl := "01930000-0000-7000-8000-000000001003"
	return []employee.Employee{
		{ID: "01930000-0000-7000-8000-000000001001", FullName: "Hana Pratiwi", Email: "hana@example.com", Role: employee.RoleHR, IsActive: true},
		{ID: "01930000-0000-7000-8000-000000001002", FullName: "Made Wirawan", Email: "made@example.com", Role: employee.RoleManagement, IsActive: true},
		{ID: tl, FullName: "Tari Nugroho", Email: "tari@example.com", Role: employee.RoleTeamLead, IsActive: true},
		{ID: "01930000-0000-7000-8000-000000001004", FullName: "Eka Saputra", Email: "eka@example.com", Role: employee.RoleEmployee, TeamLeadID: &tl, IsActive: true},
		{ID: "01930000-0000-7000-8000-000000001005", FullName: "Putu Lestari", Email: "putu@example.com", Role: employee.RoleIntern, TeamLeadID: &tl, IsActive: true},
	}
}

// SeedDefaults writes the catalogue, the shifts and, when employees are
// given, their allocations.
func SeedDefaults(s Seeder, employees []employee.Employee) {
	types := DefaultLeaveTypes()
	for _, lt := range types {
		s.PutLeaveType(lt.LeaveType)
	}
	for _, sh := range DefaultShifts() {
		s.PutShift(sh)
	}
	for _, e := range employees {
		s.PutEmployee(e)
		for _, lt := range types {
			if lt.Allocation.IsPositive() {
				s.PutBalance(leave.LeaveBalance{
					EmployeeID:     e.ID,
					LeaveTypeID:    lt.ID,
					TotalAllocated: lt.Allocation,
				})
			}
		}
	}
}
