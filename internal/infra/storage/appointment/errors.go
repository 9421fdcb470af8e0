package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrSlotTaken возвращается, когда уникальный индекс активных приёмов отклонил запись:
	// слот (врач, дата, время) уже занят неотменённым приёмом
	ErrSlotTaken = errors.New("appointment.repository: slot already taken")

	// ErrSerialization возвращается, когда PostgreSQL отменил запрос из-за конкурирующей транзакции
	ErrSerialization = errors.New("appointment.repository: serialization failure")

	// ErrStatusConflict возвращается, когда статус приёма изменился до обновления
	ErrStatusConflict = errors.New("appointment.repository: appointment status changed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
