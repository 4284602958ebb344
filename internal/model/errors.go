package model

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки оборачивают их, проверять через errors.Is
var (
	ErrInvalidRange           = errors.New("invalid range")
	ErrOverlap                = errors.New("overlap")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotFound               = errors.New("not found")
	ErrPermissionDenied       = errors.New("permission denied")
)

var (
	ErrRuleOverlap     = fmt.Errorf("availability rule intersects an active rule: %w", ErrOverlap)
	ErrSlotUnavailable = fmt.Errorf("slot no longer available: %w", ErrOverlap)

	ErrRuleNotFound    = fmt.Errorf("availability rule %w", ErrNotFound)
	ErrLessonNotFound  = fmt.Errorf("lesson %w", ErrNotFound)
	ErrRequestNotFound = fmt.Errorf("lesson request %w", ErrNotFound)
)
