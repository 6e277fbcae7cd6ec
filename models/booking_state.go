package models

import (
	"fmt"

	"bookinghub/constants"
)

// BookingEvent là sự kiện làm thay đổi trạng thái đơn
type BookingEvent string

const (
	EventPaymentConfirmed BookingEvent = "PAYMENT_CONFIRMED"
	EventCheckInDue       BookingEvent = "CHECKIN_DUE"
	EventCheckIn          BookingEvent = "CHECKIN"
	EventCheckOutDue      BookingEvent = "CHECKOUT_DUE"
	EventCheckOut         BookingEvent = "CHECKOUT"
	EventFinalize         BookingEvent = "FINALIZE"
	EventNoShow           BookingEvent = "NO_SHOW"
	EventCancel           BookingEvent = "CANCEL"
	EventRefund           BookingEvent = "REFUND"
)

// BookingState định nghĩa interface cho các trạng thái đơn
type BookingState interface {
	Status() constants.BookingStatus
	Handle(event BookingEvent) (constants.BookingStatus, error)
}

type transitionTable map[BookingEvent]constants.BookingStatus

type bookingState struct {
	status constants.BookingStatus
	next   transitionTable
}

func (s bookingState) Status() constants.BookingStatus {
	return s.status
}

func (s bookingState) Handle(event BookingEvent) (constants.BookingStatus, error) {
	if to, ok := s.next[event]; ok {
		return to, nil
	}
	return "", fmt.Errorf("cannot apply %s to %s booking", event, s.status)
}

var bookingStates = map[constants.BookingStatus]bookingState{
	constants.BookingStatusPending: {constants.BookingStatusPending, transitionTable{
		EventPaymentConfirmed: constants.BookingStatusConfirmed,
		EventCancel:           constants.BookingStatusCancelled,
	}},
	constants.BookingStatusConfirmed: {constants.BookingStatusConfirmed, transitionTable{
		EventCheckInDue: constants.BookingStatusNeedCheckIn,
		EventCancel:     constants.BookingStatusCancelled,
	}},
	constants.BookingStatusNeedCheckIn: {constants.BookingStatusNeedCheckIn, transitionTable{
		EventCheckIn: constants.BookingStatusCheckedIn,
		EventNoShow:  constants.BookingStatusCompleted,
		EventCancel:  constants.BookingStatusCancelled,
	}},
	constants.BookingStatusCheckedIn: {constants.BookingStatusCheckedIn, transitionTable{
		EventCheckOutDue: constants.BookingStatusNeedCheckOut,
		EventCheckOut:    constants.BookingStatusCheckedOut,
	}},
	constants.BookingStatusNeedCheckOut: {constants.BookingStatusNeedCheckOut, transitionTable{
		EventCheckOut: constants.BookingStatusCheckedOut,
	}},
	constants.BookingStatusCheckedOut: {constants.BookingStatusCheckedOut, transitionTable{
		EventFinalize: constants.BookingStatusCompleted,
	}},
	constants.BookingStatusCancelled: {constants.BookingStatusCancelled, transitionTable{
		EventRefund: constants.BookingStatusRefund,
	}},
	constants.BookingStatusCompleted: {constants.BookingStatusCompleted, transitionTable{}},
	constants.BookingStatusRefund:    {constants.BookingStatusRefund, transitionTable{}},
}

// GetBookingState trả về state tương ứng với trạng thái đơn
func GetBookingState(status constants.BookingStatus) (BookingState, error) {
	s, ok := bookingStates[status]
	if !ok {
		return nil, fmt.Errorf("unknown booking status %q", status)
	}
	return s, nil
}

// NextStatus áp dụng một sự kiện lên trạng thái hiện tại
func NextStatus(current constants.BookingStatus, event BookingEvent) (constants.BookingStatus, error) {
	state, err := GetBookingState(current)
	if err != nil {
		return "", err
	}
	return state.Handle(event)
}

// SourcesFor liệt kê các trạng thái chấp nhận sự kiện, dùng cho điều kiện WHERE status IN
func SourcesFor(event BookingEvent) []constants.BookingStatus {
	var out []constants.BookingStatus
	for _, status := range statusOrder {
		if _, ok := bookingStates[status].next[event]; ok {
			out = append(out, status)
		}
	}
	return out
}

var statusOrder = []constants.BookingStatus{
	constants.BookingStatusPending,
	constants.BookingStatusConfirmed,
	constants.BookingStatusNeedCheckIn,
	constants.BookingStatusCheckedIn,
	constants.BookingStatusNeedCheckOut,
	constants.BookingStatusCheckedOut,
	constants.BookingStatusCompleted,
	constants.BookingStatusCancelled,
	constants.BookingStatusRefund,
}

// IsTerminal: không còn sự kiện nào áp dụng được
func IsTerminal(status constants.BookingStatus) bool {
	s, ok := bookingStates[status]
	return ok && len(s.next) == 0
}
