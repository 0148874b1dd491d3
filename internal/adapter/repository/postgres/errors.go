package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"

	"github.com/V4T54L/storesync/internal/domain"
)

// classify translates a driver-level failure into a domain.StoreError so that
// nothing above this package ever branches on pq error codes. Connection and
// resource faults are transient (the sender should retry); everything else is
// a data fault that would fail identically on redelivery.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := domain.KindData

	var pqErr *pq.Error
	var netErr net.Error
	switch {
	case errors.As(err, &pqErr):
		switch pqErr.Code.Class() {
		case "08", // connection exceptions
			"40", // transaction rollback (deadlock, serialization)
			"53", // insufficient resources
			"57", // operator intervention
			"58": // system errors
			kind = domain.KindTransient
		}
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		kind = domain.KindTransient
	}

	return &domain.StoreError{Kind: kind, Op: op, Err: err}
}
