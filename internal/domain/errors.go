package domain

import "errors"

var (
	ErrUnknownRole       = errors.New("unknown actor role")
	ErrMissingCompany    = errors.New("client roles require a company code")
	ErrUnexpectedCompany = errors.New("staff roles must not carry a company code")
)
