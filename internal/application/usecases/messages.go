package usecases

import (
	"fmt"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

const StartupMessage = "tennisbot started and waiting for scheduled booking time."

func SuccessMessage(s booking.Slot) string {
	return fmt.Sprintf("Tennis court booked!\n\nCourt: %s\nDate: %s\nTime: %s - %s",
		s.Resource, s.Date.Format(booking.DateLayout), s.Start, s.End)
}

func FailureMessage(reason string) string {
	return fmt.Sprintf("Tennis court booking failed!\n\nReason: %s", reason)
}
