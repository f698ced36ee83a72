package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketcal/pkg/domain/types"
)

func TestResourceState_IsKnown(t *testing.T) {
	tests := []struct {
		state types.ResourceState
		want  bool
	}{
		{types.ResourceStateSync, true},
		{types.ResourceStateExists, true},
		{types.ResourceStateNotExists, false},
		{types.ResourceState(""), false},
		{types.ResourceState("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			gt.Value(t, tt.state.IsKnown()).Equal(tt.want)
		})
	}
}
