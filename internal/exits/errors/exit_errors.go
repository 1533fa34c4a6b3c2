package exiterrors

import (
	"fmt"
	"net/http"

	"go-orgflow/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrExitNotFound = apperror.New(
		apperror.CodeNotFound,
		"exit request not found",
		http.StatusNotFound,
	)
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"clearance task not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrExitAlreadyOpen = apperror.New(
		apperror.CodeConflict,
		"an exit request is already open for this employee",
		http.StatusConflict,
	)
	ErrUnknownAction = apperror.New(
		apperror.CodeInvalidInput,
		"unknown exit transition action",
		http.StatusBadRequest,
	)
	ErrActionNotAllowedForRole = apperror.New(
		apperror.CodeForbidden,
		"your role may not perform this transition",
		http.StatusForbidden,
	)
	ErrEmployeeOutOfScope = apperror.New(
		apperror.CodeForbidden,
		"employee is outside your approval scope",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"exit request is not in the required status for this action",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when rejecting",
		http.StatusBadRequest,
	)
	ErrTaskRoleNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"your role may not act on this clearance department",
		http.StatusForbidden,
	)
	ErrInvalidTaskTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid clearance task status transition",
		http.StatusBadRequest,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeConflict,
		"exit request was modified by another actor",
		http.StatusConflict,
	)
)

// NewClearanceIncomplete reports exactly how many tasks still block the
// transition, per the completion gate contract.
func NewClearanceIncomplete(openTasks int64) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("%d clearance tasks are still open", openTasks),
		http.StatusBadRequest,
	)
}
