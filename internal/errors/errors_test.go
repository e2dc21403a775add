package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(ColumnNotFound("order_amount"), "stats failed")

	assert.Equal(t, CodeColumnNotFound, GetCode(err))
	assert.EqualError(t, err, `stats failed: column "order_amount" not found`)
}

func TestWrapPlainError(t *testing.T) {
	err := Wrapf(io.EOF, "reading %s", "orders.csv")

	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.True(t, stderrors.Is(err, io.EOF))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, WithCode(CodeIOError, nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeIOError, io.ErrUnexpectedEOF)

	assert.True(t, HasCode(err, CodeIOError))
	assert.False(t, HasCode(io.EOF, CodeIOError))
	assert.Equal(t, "UNKNOWN", GetCode(io.EOF))
}
