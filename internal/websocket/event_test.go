package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]any{
		"id":       1,
		"fileName": "financial_monthly_20250305_143009.pdf",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeReportGeneration, payload)
	after := time.Now()

	assert.Equal(t, "report_generation.created", evt.Type)
	assert.Equal(t, EntityTypeReportGeneration, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	evt := Event{
		Type:      "report_generation.sent",
		Entity:    EntityTypeReportGeneration,
		Payload:   map[string]any{"id": float64(3), "emailRecipientsCount": float64(12)},
		Timestamp: fixedTime,
	}

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime, decoded.Timestamp.UTC())

	payload, ok := decoded.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), payload["id"])
	assert.Equal(t, float64(12), payload["emailRecipientsCount"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]any{"id": float64(1)}

	tests := []struct {
		name   string
		evt    Event
		typ    string
		entity EntityType
	}{
		{"generation created", ReportGenerationCreated(payload), "report_generation.created", EntityTypeReportGeneration},
		{"generation sent", ReportGenerationSent(payload), "report_generation.sent", EntityTypeReportGeneration},
		{"generation failed", ReportGenerationFailed(payload), "report_generation.failed", EntityTypeReportGeneration},
		{"report created", ReportCreated(payload), "report.created", EntityTypeReport},
		{"report updated", ReportUpdated(payload), "report.updated", EntityTypeReport},
		{"report deleted", ReportDeleted(payload), "report.deleted", EntityTypeReport},
		{"bill created", BillCreated(payload), "recurring_bill.created", EntityTypeBill},
		{"bill updated", BillUpdated(payload), "recurring_bill.updated", EntityTypeBill},
		{"bill deleted", BillDeleted(payload), "recurring_bill.deleted", EntityTypeBill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}
