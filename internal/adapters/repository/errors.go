package repository

import "errors"

// Sentinel kinds for scoreboard errors.
var (
	ErrNotFound     = errors.New("character not found")
	ErrInvalidLimit = errors.New("invalid scoreboard limit")
	ErrNoSnapshot   = errors.New("no scoreboard published yet")
)
