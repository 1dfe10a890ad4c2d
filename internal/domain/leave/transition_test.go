package leave

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type actorCase struct {
	name  string
	actor employee.Employee
}

func fixtures() (employee.Employee, []actorCase) {
	requester := employee.Employee{ID: "emp", Role: employee.RoleEmployee, TeamLeadID: ptr("tl"), IsActive: true}
	actors := []actorCase{
		{"team lead", employee.Employee{ID: "tl", Role: employee.RoleTeamLead, IsActive: true}},
		{"other team lead", employee.Employee{ID: "tl2", Role: employee.RoleTeamLead, IsActive: true}},
		{"hr", employee.Employee{ID: "hr", Role: employee.RoleHR, IsActive: true}},
		{"management", employee.Employee{ID: "mgmt", Role: employee.RoleManagement, IsActive: true}},
		{"peer", employee.Employee{ID: "peer", Role: employee.RoleEmployee, TeamLeadID: ptr("tl"), IsActive: true}},
		{"intern", employee.Employee{ID: "intern", Role: employee.RoleIntern, IsActive: true}},
		{"requester", requester},
	}
	return requester, actors
}

func TestTransitions_TableShape(t *testing.T) {
	all := Transitions()
	require.Len(t, all, 4)

	for _, tr := range all {
		assert.False(t, tr.From.IsFinal(), "edge leaves a final state: %+v", tr)
		assert.True(t, tr.Debit == (tr.To == StatusHRApproved), "only hr approval debits: %+v", tr)
	}
}

func TestAuthorize_Exhaustive(t *testing.T) {
	requester, actors := fixtures()

	for _, status := range AllStatuses {
		for _, action := range []Action{ActionApprove, ActionReject} {
			for _, ac := range actors {
				tr, err := Authorize(ac.actor, requester, status, action)

				want, inTable := LookupTransition(status, action)
				allowed := inTable && ac.actor.ID != requester.ID && want.Approver.Holds(ac.actor, requester)

				if allowed {
					require.NoError(t, err, "%s %s on %s", ac.name, action, status)
					assert.Equal(t, want.To, tr.To)
					continue
				}
				require.Error(t, err, "%s %s on %s should be rejected", ac.name, action, status)
				kind := apperror.KindOf(err)
				assert.Contains(t, []apperror.Kind{apperror.KindAuthorization, apperror.KindStage}, kind)
			}
		}
	}
}

func TestAuthorize_FinalStatesAcceptNothing(t *testing.T) {
	requester, actors := fixtures()

	for _, status := range AllStatuses {
		if !status.IsFinal() {
			continue
		}
		for _, action := range []Action{ActionApprove, ActionReject} {
			for _, ac := range actors {
				_, err := Authorize(ac.actor, requester, status, action)
				assert.Error(t, err, "%s %s on %s", ac.name, action, status)
			}
		}
	}
}

func TestAuthorize_ErrorKinds(t *testing.T) {
	requester, _ := fixtures()
	tl := employee.Employee{ID: "tl", Role: employee.RoleTeamLead, IsActive: true}
	hr := employee.Employee{ID: "hr", Role: employee.RoleHR, IsActive: true}
	peer := employee.Employee{ID: "peer", Role: employee.RoleEmployee, IsActive: true}

	tests := []struct {
		name    string
		actor   employee.Employee
		status  LeaveRequestStatus
		action  Action
		wantErr error
	}{
		{"hr before team lead", hr, StatusApplied, ActionApprove, ErrWrongStage},
		{"team lead acts twice", tl, StatusTLApproved, ActionApprove, ErrWrongStage},
		{"team lead after rejection", tl, StatusTLRejected, ActionReject, ErrWrongStage},
		{"hr on final state", hr, StatusHRApproved, ActionReject, ErrWrongStage},
		{"peer approves", peer, StatusApplied, ActionApprove, ErrNotApprover},
		{"peer on hr stage", peer, StatusTLApproved, ActionApprove, ErrNotApprover},
		{"self approval", requester, StatusApplied, ActionApprove, ErrSelfApproval},
		{"inactive team lead", employee.Employee{ID: "tl", Role: employee.RoleTeamLead}, StatusApplied, ActionApprove, ErrNotApprover},
		{"unknown action", tl, StatusApplied, Action("cancel"), ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Authorize(tt.actor, requester, tt.status, tt.action)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestAuthorize_HRWhoIsAlsoTeamLead(t *testing.T) {
	requester := employee.Employee{ID: "emp", Role: employee.RoleEmployee, TeamLeadID: ptr("hrlead"), IsActive: true}
	hrLead := employee.Employee{ID: "hrlead", Role: employee.RoleHR, IsActive: true}

	tr, err := Authorize(hrLead, requester, StatusApplied, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusTLApproved, tr.To)

	tr, err = Authorize(hrLead, requester, StatusTLApproved, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusHRApproved, tr.To)
}
