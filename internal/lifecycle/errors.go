package lifecycle

import (
	"errors"

	"github.com/aleister1102/scanconsole/internal/urlhandler"
)

var (
	// ErrScanInProgress is returned by Submit while an attempt is pending.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrControllerClosed is returned by Submit after Close.
	ErrControllerClosed = errors.New("controller closed")

	ErrEmptyURL     = urlhandler.ErrEmptyURL
	ErrMalformedURL = urlhandler.ErrMalformedURL
)
