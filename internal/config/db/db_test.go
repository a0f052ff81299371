package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenEmptyDSN(t *testing.T) {
	db, err := Open(context.Background(), "")
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrEmptyDSN)
}
