package levelbook

import (
	"errors"

	"github.com/0x5487/levelbook/structure"
)

var (
	ErrInvalidParam     = errors.New("the param is invalid")
	ErrNotFound         = errors.New("not found")
	ErrSymbolExists     = errors.New("symbol is already registered")
	ErrPublisherTimeout = errors.New("publisher shutdown timeout")
	ErrLevelNotFound    = structure.ErrLevelNotFound
	ErrPoolExhausted    = structure.ErrPoolExhausted
)
