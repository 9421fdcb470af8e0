package handlers

import (
	"fmt"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
)

const (
	msgMissingField      = "не заполнены обязательные поля: %s"
	msgSlotNotAvailable  = "выбранный слот недоступен для записи"
	msgSlotAlreadyBooked = "выбранный слот уже занят"
)

// RespondBookingRejection пишет отказ валидатора записи.
// MissingField - 400, SlotNotAvailable и SlotAlreadyBooked - 409.
func RespondBookingRejection(w http.ResponseWriter, rejection *scheduling.RejectionError) {
	switch rejection.Reason {
	case scheduling.ReasonMissingField:
		RespondRejection(w, http.StatusBadRequest, fmt.Sprintf(msgMissingField, rejection.Detail), string(rejection.Reason))
	case scheduling.ReasonSlotNotAvailable:
		RespondRejection(w, http.StatusConflict, msgSlotNotAvailable, string(rejection.Reason))
	default:
		RespondRejection(w, http.StatusConflict, msgSlotAlreadyBooked, string(rejection.Reason))
	}
}
