package delivery

import "errors"

var (
	ErrAlreadySent = errors.New("notification already sent")
	ErrInProgress  = errors.New("notification send in progress")
)

type Kind string

const (
	KindOrderConfirmation Kind = "order.confirmation"
	KindWelcome           Kind = "user.welcome"
)
