package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func TestParseProfileID(t *testing.T) {
	id, err := model.ParseProfileID("12345")
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal(model.ProfileID(12345))
	gt.Value(t, id.String()).Equal("12345")

	_, err = model.ParseProfileID("abc")
	gt.Value(t, err).NotNil()

	_, err = model.ParseProfileID("0")
	gt.Value(t, err).NotNil()
}

func TestParseTicketID(t *testing.T) {
	id, err := model.ParseTicketID("99")
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal(model.TicketID(99))

	_, err = model.ParseTicketID("-1")
	gt.Value(t, err).NotNil()
}
