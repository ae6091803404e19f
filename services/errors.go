package services

import "errors"

var (
	ErrInvalidToken      = errors.New("invalid table token")
	ErrLoginFailed       = errors.New("login failed")
	ErrUnauthorizedTable = errors.New("table is not available to this session")
	ErrStateConflict     = errors.New("order status change conflicts with its current status")
	ErrNotFound          = errors.New("not found")
	ErrTenantInactive    = errors.New("tenant is not active")
	ErrPINInUse          = errors.New("pin already used by another waiter")
	ErrInvalidPIN        = errors.New("pin must be exactly 4 digits")
	ErrTableInUse        = errors.New("table has open orders")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrUnknownItem       = errors.New("item is not on the menu")
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 99")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrEmailInUse        = errors.New("email already registered")
)
