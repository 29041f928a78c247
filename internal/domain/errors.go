package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidParam = errors.New("invalid parameter")
	ErrUnavailable  = errors.New("backend unavailable")
)
