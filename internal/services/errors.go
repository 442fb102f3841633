// Package services defines the business logic for notification rules.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrRuleNotFound indicates that the requested rule does not exist or
	// belongs to a different shop. Absence and cross-tenant access share
	// one error on purpose: a caller must not be able to tell whether a
	// foreign rule exists.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrInvalidRule is returned when a create or update carries a blank
	// title or trigger after normalization.
	ErrInvalidRule = errors.New("title and trigger are required")
)
