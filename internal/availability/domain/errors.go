package domain

import "errors"

var (
	ErrInvalidClockTime  = errors.New("time must be HH:mm")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidWeekday    = errors.New("unknown weekday")
	ErrInvalidBlockRange = errors.New("block end must be after its start")
	ErrBlockNotFound     = errors.New("block not found")
)
