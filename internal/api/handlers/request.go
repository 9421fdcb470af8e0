package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

const maxBodyBytes = 1 << 20

// ErrEmptyBody тело запроса отсутствует
var ErrEmptyBody = errors.New("request body is empty")

var validate = validator.New()

// DecodeJSON разбирает тело запроса в v. Неизвестные поля считаются ошибкой.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// Validate проверяет теги `validate` структуры запроса
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// ParseDate разбирает дату "YYYY-MM-DD"
func ParseDate(s string) (time.Time, error) {
	t, err := types.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// OptionalDateQuery читает необязательный параметр даты из query string
func OptionalDateQuery(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
