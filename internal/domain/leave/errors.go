package leave

import "github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound = apperror.New(apperror.KindNotFound, "leave request not found")
	ErrLeaveTypeNotFound    = apperror.New(apperror.KindNotFound, "leave type not found")
	ErrLeaveBalanceNotFound = apperror.New(apperror.KindNotFound, "leave balance not found")

	ErrLeaveTypeInactive   = apperror.New(apperror.KindValidation, "leave type is not active")
	ErrInvalidAction       = apperror.New(apperror.KindValidation, "action must be approve or reject")
	ErrInvalidStatusFilter = apperror.New(apperror.KindValidation, "unknown leave request status")

	ErrNotApprover  = apperror.New(apperror.KindAuthorization, "actor is not an approver for this leave request")
	ErrSelfApproval = apperror.New(apperror.KindAuthorization, "employees cannot act on their own leave request")
	ErrNotVisible   = apperror.New(apperror.KindAuthorization, "not allowed to view this leave request")

	ErrWrongStage = apperror.New(apperror.KindStage, "leave request is not at the stage for this action")

	ErrLeaveRequestAlreadyProcessed = apperror.New(apperror.KindConflict, "leave request already processed")
	ErrOverlappingRequest           = apperror.New(apperror.KindConflict, "leave request overlaps an existing request")
)
