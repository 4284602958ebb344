package service

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput проверяет теги validate и приводит ошибку к ErrInvalidRange
func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%v: %w", err, model.ErrInvalidRange)
	}
	return nil
}

// validateFutureSlot слот корректен и ещё не начался
func validateFutureSlot(slot model.TimeSlot, now time.Time) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	if slot.StartTime.Before(now) {
		return fmt.Errorf("slot %s is in the past: %w", slot.StartTime.Format(time.RFC3339), model.ErrInvalidRange)
	}
	return nil
}
