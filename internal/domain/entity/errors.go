package entity

import "errors"

var (
	ErrInvalidRequest    = errors.New("transfer request invalid")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("transfer amount exceeds balance")
	ErrAlreadySettled    = errors.New("transfer already settled")
)
