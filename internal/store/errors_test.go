package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntityErrorsWrapGenericOnes(t *testing.T) {
	notFound := []error{
		ErrUserNotFound,
		ErrChallengeNotFound,
		ErrCheckInNotFound,
		ErrReminderNotFound,
		ErrPostNotFound,
		ErrCommentNotFound,
		ErrReportNotFound,
	}
	for _, err := range notFound {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v should wrap ErrNotFound", err)
		}
		if !IsNotFoundError(err) {
			t.Errorf("IsNotFoundError(%v) should be true", err)
		}
	}

	duplicates := []error{
		ErrUsernameExists,
		ErrEmailExists,
		ErrAlreadySubscribed,
		ErrAlreadyCheckedIn,
		ErrAlreadyLiked,
	}
	for _, err := range duplicates {
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("%v should wrap ErrDuplicate", err)
		}
		if !IsDuplicateError(err) {
			t.Errorf("IsDuplicateError(%v) should be true", err)
		}
	}
}

func TestWrappedErrorsKeepIdentity(t *testing.T) {
	wrapped := fmt.Errorf("creating user: %w", ErrUsernameExists)
	if !errors.Is(wrapped, ErrUsernameExists) {
		t.Error("wrapped error should match ErrUsernameExists")
	}
	if !IsDuplicateError(wrapped) {
		t.Error("wrapped error should still be a duplicate error")
	}
	if IsNotFoundError(wrapped) {
		t.Error("duplicate error should not be a not-found error")
	}
}
