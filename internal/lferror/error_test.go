package lferror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLFError(t *testing.T) {
	err := lferror.New("some message")

	assert.Equal(t, "some message", err.Error())
	assert.Equal(t, http.StatusBadRequest, lferror.StatusCode(err))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, lferror.StatusCode(lferror.ErrAlreadyClaimed))
	assert.Equal(t, http.StatusConflict, lferror.StatusCode(fmt.Errorf("submit: %w", lferror.ErrClaimInProgress)))
	assert.Equal(t, http.StatusServiceUnavailable, lferror.StatusCode(lferror.StoreWrite(errors.New("disk full"))))
	assert.Equal(t, http.StatusInternalServerError, lferror.StatusCode(errors.New("boom")))
}

func TestIs(t *testing.T) {
	wrapped := lferror.StoreRead(errors.New("timeout"))

	assert.True(t, errors.Is(wrapped, lferror.ErrStoreReadFailed))
	assert.False(t, errors.Is(wrapped, lferror.ErrStoreWriteFailed))
	assert.False(t, errors.Is(lferror.ErrAlreadyClaimed, lferror.ErrClaimInProgress))
	assert.True(t, lferror.IsKind(lferror.ErrClaimAlreadyProcessed, lferror.KindInvalidState))
	assert.True(t, lferror.IsKind(lferror.ErrItemNotFound, lferror.KindNotFound))
}

func TestCause(t *testing.T) {
	cause := errors.New("disk full")
	err := lferror.StoreWrite(cause)

	assert.Equal(t, cause, errors.Unwrap(err))

	wrapped := pkgerrors.Wrap(lferror.ErrItemNotFound, "could not find item")
	assert.True(t, errors.Is(wrapped, lferror.ErrItemNotFound))
	assert.Equal(t, http.StatusNotFound, lferror.StatusCode(wrapped))
	assert.Equal(t, "The store could not be updated, please try again.: disk full", err.Error())
	assert.Equal(t, "store-write-failed", lferror.ErrStoreWriteFailed.Tag())
}
