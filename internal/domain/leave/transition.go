package leave

import (
	"fmt"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
)

// Approver is the relationship an actor must hold to the requester.
type Approver string

const (
	ApproverTeamLead Approver = "team_lead"
	ApproverHR       Approver = "hr"
)

// Holds is the single authorization predicate per approver relationship.
func (a Approver) Holds(actor, requester employee.Employee) bool {
	switch a {
	case ApproverTeamLead:
		return actor.IsTeamLeadOf(requester)
	case ApproverHR:
		return actor.IsHRPool()
	}
	return false
}

// Audience selects who is notified after a transition.
type Audience string

const (
	AudienceRequester Audience = "requester"
	AudienceHRPool    Audience = "hr_pool"
)

// Transition is one edge of the leave request state machine.
type Transition struct {
	From             LeaveRequestStatus
	Action           Action
	To               LeaveRequestStatus
	Approver         Approver
	Debit            bool
	Notify           Audience
	NotificationType notification.NotificationType
}

type transitionKey struct {
	from   LeaveRequestStatus
	action Action
}

var transitions = map[transitionKey]Transition{
	{StatusApplied, ActionApprove}: {
		From: StatusApplied, Action: ActionApprove, To: StatusTLApproved,
		Approver: ApproverTeamLead, Notify: AudienceHRPool,
		NotificationType: notification.TypeLeaveTLApproved,
	},
	{StatusApplied, ActionReject}: {
		From: StatusApplied, Action: ActionReject, To: StatusTLRejected,
		Approver: ApproverTeamLead, Notify: AudienceRequester,
		NotificationType: notification.TypeLeaveTLRejected,
	},
	{StatusTLApproved, ActionApprove}: {
		From: StatusTLApproved, Action: ActionApprove, To: StatusHRApproved,
		Approver: ApproverHR, Debit: true, Notify: AudienceRequester,
		NotificationType: notification.TypeLeaveHRApproved,
	},
	{StatusTLApproved, ActionReject}: {
		From: StatusTLApproved, Action: ActionReject, To: StatusHRRejected,
		Approver: ApproverHR, Notify: AudienceRequester,
		NotificationType: notification.TypeLeaveHRRejected,
	},
}

// LookupTransition returns the edge leaving from on action, if any.
func LookupTransition(from LeaveRequestStatus, action Action) (Transition, bool) {
	t, ok := transitions[transitionKey{from, action}]
	return t, ok
}

// Transitions returns every edge of the state machine.
func Transitions() []Transition {
	out := make([]Transition, 0, len(transitions))
	for _, s := range AllStatuses {
		for _, a := range []Action{ActionApprove, ActionReject} {
			if t, ok := transitions[transitionKey{s, a}]; ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// Authorize decides whether actor may apply action to a request owned by
// requester that is currently in status. Authorization failures come first;
// a recognised approver acting at the wrong point gets ErrWrongStage.
func Authorize(actor, requester employee.Employee, status LeaveRequestStatus, action Action) (Transition, error) {
	if !action.IsValid() {
		return Transition{}, ErrInvalidAction
	}
	if !actor.IsActive {
		return Transition{}, ErrNotApprover
	}
	if actor.ID == requester.ID {
		return Transition{}, ErrSelfApproval
	}
	if !ApproverTeamLead.Holds(actor, requester) && !ApproverHR.Holds(actor, requester) {
		return Transition{}, ErrNotApprover
	}

	t, ok := LookupTransition(status, action)
	if !ok {
		return Transition{}, fmt.Errorf("%w: request is %s", ErrWrongStage, status)
	}
	if !t.Approver.Holds(actor, requester) {
		return Transition{}, fmt.Errorf("%w: %s cannot %s a request that is %s", ErrWrongStage, actorLabel(actor, requester), action, status)
	}
	return t, nil
}

func actorLabel(actor, requester employee.Employee) string {
	if ApproverTeamLead.Holds(actor, requester) {
		return "team lead"
	}
	return "hr"
}
