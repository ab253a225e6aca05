package storage

import "errors"

var (
	ErrTokenNotFound = errors.New("access token not found")
)
