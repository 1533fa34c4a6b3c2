package teamjoinerrors

import (
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
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"team join request not found",
		http.StatusNotFound,
	)
	ErrTargetNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrTargetNotJoinable = apperror.New(
		apperror.CodeInvalidInput,
		"employee holds a managerial role and cannot be acquired as a report",
		http.StatusBadRequest,
	)
	ErrTargetNotActive = apperror.New(
		apperror.CodeInvalidState,
		"employee is not active",
		http.StatusBadRequest,
	)
	ErrTargetAlreadyManaged = apperror.New(
		apperror.CodeInvalidState,
		"employee already reports to a manager",
		http.StatusBadRequest,
	)
	ErrDuplicateProposal = apperror.New(
		apperror.CodeConflict,
		"a pending proposal already exists for this employee and manager",
		http.StatusConflict,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the proposed employee may respond to this request",
		http.StatusForbidden,
	)
	ErrNotProposalOwner = apperror.New(
		apperror.CodeForbidden,
		"only the proposing manager may cancel this request",
		http.StatusForbidden,
	)
	ErrRequestNotPending = apperror.New(
		apperror.CodeInvalidState,
		"team join request is no longer pending",
		http.StatusBadRequest,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeConflict,
		"team join request was modified by another actor",
		http.StatusConflict,
	)
)
