package employee

import "github.com/cmlabs-hris/hrm-core/internal/pkg/apperror"

var (
	ErrEmployeeNotFound = apperror.New(apperror.KindNotFound, "employee not found")
	ErrEmployeeInactive = apperror.New(apperror.KindAuthorization, "employee is inactive")
)
