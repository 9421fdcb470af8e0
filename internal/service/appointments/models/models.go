package models

import (
	"errors"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

var (
	// ErrInvalidTab возвращается при неизвестной вкладке списка
	ErrInvalidTab = errors.New("invalid appointments tab")
)

// Request модели

// CancelAppointmentRequest запрос на отмену приёма
type CancelAppointmentRequest struct {
	UserID             string  `json:"userId"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ListAppointmentsRequest запрос на список приёмов пациента или врача
type ListAppointmentsRequest struct {
	UserID    string     `json:"userId"`
	OwnerID   string     `json:"ownerId"`             // ID пациента или врача, чьи приёмы запрашиваются
	Tab       *string    `json:"tab,omitempty"`       // scheduled, pending, previous, cancelled; nil - все
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр. Владелец (пациент или врач) задаётся вызывающим.
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}

	if r.Tab != nil && *r.Tab != "" {
		statuses, ok := domain.AppointmentTab(*r.Tab).Statuses()
		if !ok {
			return filter, ErrInvalidTab
		}
		filter.Statuses = statuses
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными приёма
type AppointmentResponse struct {
	ID              string  `json:"id"`
	DoctorID        string  `json:"doctorId"`
	PatientID       string  `json:"patientId"`
	AppointmentDate string  `json:"appointmentDate"` // "2026-10-19"
	AppointmentTime string  `json:"appointmentTime"` // "10:00 AM"
	AppointmentType string  `json:"appointmentType"`
	PatientIssue    string  `json:"patientIssue"`
	DiseaseName     *string `json:"diseaseName,omitempty"`
	DoctorFees      float64 `json:"doctorFees"`
	Status          string  `json:"status"`

	// Денормализованные данные врача
	Specialty *string `json:"specialty,omitempty"`
	Hospital  *string `json:"hospital,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком приёмов
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// BookedSlotsResponse занятые слоты врача: дата -> отсортированные времена
type BookedSlotsResponse struct {
	DoctorID string              `json:"doctorId"`
	From     string              `json:"from"`
	To       string              `json:"to"`
	Slots    map[string][]string `json:"slots"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		DoctorID:           a.DoctorID,
		PatientID:          a.PatientID,
		AppointmentDate:    types.FormatDate(a.AppointmentDate),
		AppointmentTime:    a.AppointmentTime.String(),
		AppointmentType:    string(a.AppointmentType),
		PatientIssue:       a.PatientIssue,
		DiseaseName:        a.DiseaseName,
		DoctorFees:         a.DoctorFees,
		Status:             string(a.Status),
		Specialty:          a.Specialty,
		Hospital:           a.Hospital,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if item := FromDomainAppointment(a); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}

	return resp
}

// FromDomainBookedSlots конвертирует проекцию занятых слотов в DTO
func FromDomainBookedSlots(doctorID string, from, to time.Time, booked domain.BookedSlots) *BookedSlotsResponse {
	resp := &BookedSlotsResponse{
		DoctorID: doctorID,
		From:     types.FormatDate(from),
		To:       types.FormatDate(to),
		Slots:    make(map[string][]string, len(booked)),
	}

	for date := range booked {
		times := booked.Times(date)
		formatted := make([]string, len(times))
		for i, t := range times {
			formatted[i] = t.String()
		}
		resp.Slots[date] = formatted
	}

	return resp
}
