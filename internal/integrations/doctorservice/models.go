package doctorservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// Doctor профиль врача из сервиса профилей
type Doctor struct {
	ID                     string       `json:"id"`
	FirstName              string       `json:"firstName"`
	LastName               string       `json:"lastName"`
	Specialty              string       `json:"specialty"`
	HospitalName           string       `json:"hospitalName"`
	WorkingHours           WorkingHours `json:"workingHours"`
	OnlineConsultationRate Rate         `json:"onlineConsultationRate"`
}

// WorkingHours рабочие часы в формате "H:MM AM/PM - H:MM AM/PM"
type WorkingHours struct {
	WorkingTime string `json:"workingTime"`
	CheckupTime string `json:"checkupTime"`
	BreakTime   string `json:"breakTime"`
}

// ToDomain конвертирует рабочие часы в доменную модель
func (w WorkingHours) ToDomain() domain.WorkingHours {
	return domain.WorkingHours{
		WorkingTime: w.WorkingTime,
		CheckupTime: w.CheckupTime,
		BreakTime:   w.BreakTime,
	}
}

// FullName имя врача для логов и ответов
func (d *Doctor) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// ErrorResponse модель ошибки от сервиса профилей
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Rate стоимость консультации. Старые профили хранят её строкой ("1000"), новые числом.
type Rate float64

// UnmarshalJSON принимает число, строку с числом или null
func (r *Rate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*r = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: consultation rate %q", ErrInvalidResponse, s)
		}
		*r = Rate(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Rate(v)
	return nil
}
