package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployee_IsTeamLeadOf(t *testing.T) {
	tlID := "tl-1"
	tl := Employee{ID: tlID, Role: RoleTeamLead}
	report := Employee{ID: "e-1", Role: RoleEmployee, TeamLeadID: &tlID}
	orphan := Employee{ID: "e-2", Role: RoleEmployee}

	assert.True(t, tl.IsTeamLeadOf(report))
	assert.False(t, tl.IsTeamLeadOf(orphan))
	assert.False(t, report.IsTeamLeadOf(tl))
}

func TestEmployee_IsHRPool(t *testing.T) {
	for _, r := range []Role{RoleHR, RoleManagement} {
		assert.True(t, Employee{Role: r}.IsHRPool(), r)
	}
	for _, r := range []Role{RoleEmployee, RoleTeamLead, RoleIntern} {
		assert.False(t, Employee{Role: r}.IsHRPool(), r)
	}
	assert.False(t, Role("admin").IsValid())
}
