package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscription_DefaultsToEverything(t *testing.T) {
	s := NewSubscription(nil)

	for _, e := range AllEntityTypes {
		assert.True(t, s.Wants(e), "entity %s", e)
	}
	assert.Equal(t, AllEntityTypes, s.Entities())
}

func TestSubscription_Apply(t *testing.T) {
	s := NewSubscription([]EntityType{EntityTypeReportGeneration})
	assert.False(t, s.Wants(EntityTypeBill))

	require.NoError(t, s.Apply(ControlMessage{Action: ActionSubscribe, Entities: []EntityType{EntityTypeBill}}))
	assert.True(t, s.Wants(EntityTypeBill))

	require.NoError(t, s.Apply(ControlMessage{Action: ActionUnsubscribe, Entities: []EntityType{EntityTypeReportGeneration}}))
	assert.False(t, s.Wants(EntityTypeReportGeneration))
	assert.Equal(t, []EntityType{EntityTypeBill}, s.Entities())
}

func TestSubscription_ApplyRejectsUnknown(t *testing.T) {
	s := NewSubscription([]EntityType{EntityTypeReport})

	err := s.Apply(ControlMessage{Action: ActionSubscribe, Entities: []EntityType{EntityTypeBill, "payments"}})
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.False(t, s.Wants(EntityTypeBill), "partial message must not be applied")

	err = s.Apply(ControlMessage{Action: "mute", Entities: []EntityType{EntityTypeBill}})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, []EntityType{EntityTypeReport}, s.Entities())
}

func TestSubscription_ApplyJSON(t *testing.T) {
	s := NewSubscription([]EntityType{EntityTypeReport})

	require.NoError(t, s.ApplyJSON([]byte(`{"action":"subscribe","entities":["recurring_bill"]}`)))
	assert.True(t, s.Wants(EntityTypeBill))

	assert.Error(t, s.ApplyJSON([]byte(`not json`)))
}

func TestParseEntities(t *testing.T) {
	entities, err := ParseEntities(" report_generation , recurring_bill")
	require.NoError(t, err)
	assert.Equal(t, []EntityType{EntityTypeReportGeneration, EntityTypeBill}, entities)

	entities, err = ParseEntities("")
	require.NoError(t, err)
	assert.Nil(t, entities)

	_, err = ParseEntities("report,invoices")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}
