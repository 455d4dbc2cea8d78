package service

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrInvalidPlan          = errors.New("invalid plan selected")
	ErrInvalidCycle         = errors.New("cycle must be monthly or yearly")
	ErrUnsupportedCurrency  = errors.New("unsupported currency")
	ErrSlugTaken            = errors.New("organization slug already taken")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAccountNotFound      = errors.New("account not found")
	ErrSubscriptionExists   = errors.New("organization already has a live subscription")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNothingToCancel      = errors.New("subscription is not cancellable")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderMismatch        = errors.New("order does not match the requested plan")
	ErrPaymentVerification  = errors.New("payment verification failed")
	ErrCardVerification     = errors.New("card verification failed")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
)
