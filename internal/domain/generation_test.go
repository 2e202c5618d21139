package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeFromResult_Success(t *testing.T) {
	at := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	outcome := OutcomeFromResult(DistributionResult{Success: true, SentCount: 3, TotalRecipients: 3}, at)

	assert.True(t, outcome.Sent)
	assert.Equal(t, 3, outcome.RecipientsCount)
	assert.Equal(t, GenerationStatusSent, outcome.Status)
	require.NotNil(t, outcome.SentAt)
	assert.True(t, outcome.SentAt.Equal(at))
	assert.Nil(t, outcome.Error)
}

func TestOutcomeFromResult_Failure(t *testing.T) {
	outcome := OutcomeFromResult(DistributionResult{
		Success:         false,
		SentCount:       1,
		TotalRecipients: 2,
		Error:           "smtp: connection refused",
	}, time.Now())

	assert.False(t, outcome.Sent)
	assert.Nil(t, outcome.SentAt)
	assert.Equal(t, 1, outcome.RecipientsCount)
	assert.Equal(t, GenerationStatusFailed, outcome.Status)
	require.NotNil(t, outcome.Error)
	assert.Equal(t, "smtp: connection refused", *outcome.Error)
}

func TestReportKind_Predicates(t *testing.T) {
	assert.True(t, ReportKindFinancialMonthly.IsMonthly())
	assert.True(t, ReportKindTransparencyMonthly.IsMonthly())
	assert.False(t, ReportKindTransparencyQuarterly.IsMonthly())

	assert.True(t, ReportKindTransparencyQuarterly.IsTransparency())
	assert.False(t, ReportKindAnnualComparative.IsTransparency())

	assert.False(t, ReportKind("weekly").IsValid())
	for _, kind := range AllReportKinds {
		assert.True(t, kind.IsValid(), kind)
	}
}
