package repo

import "errors"

var (
	ErrBadOrderID   = errors.New("bad order_id")
	ErrBadTimestamp = errors.New("bad timestamp")
)

const maxOrderIDLen = 100
