package app

import "fmt"

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func errNotFound(what string) *DomainError {
	return domainError(404, "NOT_FOUND", what+" not found", nil)
}

func errForbidden(message string) *DomainError {
	return domainError(403, "FORBIDDEN", message, nil)
}

func errStaleBase(expected, actual string) *DomainError {
	return domainError(409, "STALE_BASE", "Base version is no longer current", map[string]any{
		"baseVersionId":    expected,
		"currentVersionId": actual,
	})
}

func errMergeConflict(details any) *DomainError {
	return domainError(409, "MERGE_CONFLICT", "Changes conflict with the current version", details)
}

func errPRNotOpen(status string) *DomainError {
	return domainError(409, "PR_NOT_OPEN", "Pull request is "+status, nil)
}

func errDuplicateFork() *DomainError {
	return domainError(409, "DUPLICATE_FORK", "You already have a fork of this playbook", nil)
}

func errValidation(details any) *DomainError {
	return domainError(400, "VALIDATION_ERROR", "Invalid request", details)
}
