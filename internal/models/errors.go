package models

import (
	"errors"
	"fmt"
)

// Code classifies a core failure
type Code int

const (
	CodeInvalidArgument Code = iota + 1
	CodeNotFound
	CodeFailedPrecondition
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeFailedPrecondition:
		return "FAILED_PRECONDITION"
	default:
		return "UNKNOWN"
	}
}

// Error messages shared by the services
const (
	ErrMsgTableNoPositive     = "Table number must be positive"
	ErrMsgQuantityPositive    = "Quantity must be positive"
	ErrMsgPercentageRange     = "Percentage must be between 0 and 100"
	ErrMsgOrderNotFound       = "Order not found"
	ErrMsgItemNotFound        = "Menu item not found"
	ErrMsgLineNotFound        = "Item not in order"
	ErrMsgOrderPaid           = "Order is already paid"
	ErrMsgOrderEmpty          = "Order has no items"
	ErrMsgInsufficientStock   = "Insufficient stock"
	ErrMsgNameRequired        = "Item name is required"
	ErrMsgPriceNonNegative    = "Price must be non-negative"
	ErrMsgStockNonNegative    = "Stock quantity must be non-negative"
	ErrMsgPaidOrderNotDeleted = "Paid orders cannot be deleted"
)

// Error is a recoverable failure reported to the presentation layer
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewInvalidArgument(message string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func NewFailedPrecondition(message string) *Error {
	return &Error{Code: CodeFailedPrecondition, Message: message}
}

func NewFailedPreconditionf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code carried by err, or 0 if err is not an *Error
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
