// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access evaluates request-level and object-level permission rules.

A [Rule] answers two questions: may this principal attempt this method at
all, and may it act on this particular object. Routes apply the first
through middleware.Authorize; services apply the second after resolving the
target, through [Guard.Object].

Rules:

  - ReadOnly: safe methods (GET, HEAD, OPTIONS) for anyone.
  - Admin: principals for which [sec.IsAdmin] holds.
  - Moderator: principals for which [sec.IsModerator] holds.
  - AuthorModeratorOrReadOnly: any authenticated principal may attempt a
    write; the object must belong to it unless it is a moderator.

Rules compose with [Any].
*/
package access

import (
	"context"
	"net/http"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Contracts

// Request is the part of an HTTP request that rules inspect.
type Request struct {
	Method    string
	Principal *sec.Principal
}

// Owned is implemented by resources that carry an immutable author.
type Owned interface {
	OwnerID() string
}

// Rule is a single permission policy.
type Rule interface {
	// Allow is the request-level gate, evaluated before any lookup.
	Allow(request Request) bool

	// AllowObject is the object-level gate, evaluated on a resolved resource.
	AllowObject(request Request, object Owned) bool
}

// IsSafeMethod reports whether method does not mutate state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// # Rules

type readOnly struct{}

func (readOnly) Allow(request Request) bool { return IsSafeMethod(request.Method) }

func (readOnly) AllowObject(request Request, _ Owned) bool { return IsSafeMethod(request.Method) }

type admin struct{}

func (admin) Allow(request Request) bool { return sec.IsAdmin(request.Principal) }

func (admin) AllowObject(Request, Owned) bool { return true }

type moderator struct{}

func (moderator) Allow(request Request) bool { return sec.IsModerator(request.Principal) }

func (moderator) AllowObject(Request, Owned) bool { return true }

type authorModeratorOrReadOnly struct{}

func (authorModeratorOrReadOnly) Allow(request Request) bool {
	return IsSafeMethod(request.Method) || sec.IsAuthenticated(request.Principal)
}

// Admin is not consulted: admins may post but not edit what others wrote.
func (authorModeratorOrReadOnly) AllowObject(request Request, object Owned) bool {
	if IsSafeMethod(request.Method) {
		return true
	}
	if !sec.IsAuthenticated(request.Principal) {
		return false
	}
	return object.OwnerID() == request.Principal.UserID || sec.IsModerator(request.Principal)
}

var (
	ReadOnly                  Rule = readOnly{}
	Admin                     Rule = admin{}
	Moderator                 Rule = moderator{}
	AuthorModeratorOrReadOnly Rule = authorModeratorOrReadOnly{}
)

// # Composition

type anyOf []Rule

// Any returns a rule satisfied when at least one of rules is.
//
// The request gate short-circuits left to right. The object gate only
// consults rules whose own request gate passed.
func Any(rules ...Rule) Rule {
	return anyOf(rules)
}

func (rules anyOf) Allow(request Request) bool {
	for _, rule := range rules {
		if rule.Allow(request) {
			return true
		}
	}
	return false
}

func (rules anyOf) AllowObject(request Request, object Owned) bool {
	for _, rule := range rules {
		if rule.Allow(request) && rule.AllowObject(request, object) {
			return true
		}
	}
	return false
}

// # Evaluation

// Check applies the request-level gate.
//
// Anonymous principals receive 401 so clients know to authenticate;
// authenticated ones receive 403.
func Check(rule Rule, request Request) error {
	if rule.Allow(request) {
		return nil
	}
	if !sec.IsAuthenticated(request.Principal) {
		return apperr.Unauthorized("Authentication credentials were not provided")
	}
	return apperr.Forbidden(apperr.PermissionDenied)
}

// CheckObject applies the request-level gate and then the object-level gate.
func CheckObject(rule Rule, request Request, object Owned) error {
	if err := Check(rule, request); err != nil {
		return err
	}
	if !rule.AllowObject(request, object) {
		return apperr.Forbidden(apperr.PermissionDenied)
	}
	return nil
}

// # Guard

// PrincipalLoader resolves the current state of an account.
type PrincipalLoader interface {
	LoadPrincipal(context context.Context, userID string) (*sec.Principal, error)
}

// Guard evaluates object-level rules against a freshly loaded principal.
type Guard struct {
	loader PrincipalLoader
}

// NewGuard constructs a [Guard].
func NewGuard(loader PrincipalLoader) *Guard {
	return &Guard{loader: loader}
}

/*
Object re-reads principal from storage and evaluates rule against object.

Description: The role and superuser flag used for the decision are the ones
stored at the moment of the check, not the ones captured when the request
started. An account that disappeared in between is treated as anonymous.

Parameters:
  - context: context.Context
  - rule: Rule
  - method: string (HTTP method)
  - principal: *sec.Principal (nil for anonymous)
  - object: Owned

Returns:
  - error: apperr.Unauthorized, apperr.Forbidden, or loader failures
*/
func (guard *Guard) Object(context context.Context, rule Rule, method string, principal *sec.Principal, object Owned) error {
	current := principal
	if sec.IsAuthenticated(principal) {
		fresh, err := guard.loader.LoadPrincipal(context, principal.UserID)
		switch {
		case err == nil:
			current = fresh
		case apperr.IsNotFound(err):
			current = nil
		default:
			return err
		}
	}

	return CheckObject(rule, Request{Method: method, Principal: current}, object)
}
