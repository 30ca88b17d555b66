package iodb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ConnectionError{
		Host: "localhost", Port: 5432, Database: "sdss5db", Err: cause,
	}

	assert.Contains(t, err.Error(), "localhost:5432/sdss5db")
	assert.ErrorIs(t, err, cause)
}

func TestMissingTableError(t *testing.T) {
	err := &MissingTableError{
		Schema: "catalogdb", Table: "lvm_magnitude", Database: "sdss5db",
	}
	assert.Contains(t, err.Error(), "catalogdb.lvm_magnitude")
	assert.Contains(t, err.Error(), "sdss5db")
}

func TestTableExistsNotConnected(t *testing.T) {
	op := &pgxOperator{}
	_, err := op.TableExists(t.Context(), "catalogdb", "lvm_magnitude")

	var notConnected *NotConnectedError
	assert.ErrorAs(t, err, &notConnected)
}
