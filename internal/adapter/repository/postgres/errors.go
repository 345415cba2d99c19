package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/api-sage/settlement-core/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeCheckViolation       = "23514"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeUniqueViolation
	}
	return false
}

// translateErr maps store-level concurrency failures onto
// domain.ErrConflict so services can retry the whole posting; domain
// sentinels pass through untouched.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		case codeCheckViolation:
			// The wallet_balance >= 0 check firing means a concurrent
			// debit won the race.
			return fmt.Errorf("%w: %v", domain.ErrInsufficientFunds, err)
		}
	}

	return err
}
