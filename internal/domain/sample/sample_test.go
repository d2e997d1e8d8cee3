package sample_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrick/novaforge/internal/domain/sample"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

func TestOreSample_AppraiseOnce(t *testing.T) {
	s := sample.NewOreSample("s-1", shared.MustNewOwnerID(1), "IRON_ORE", 24, 0.6, time.Now().UTC())
	assert.Equal(t, sample.StateUnappraised, s.State())

	require.NoError(t, s.Appraise(1200, time.Now().UTC()))
	assert.Equal(t, sample.StateAppraised, s.State())
	assert.Equal(t, 1200, s.AppraisedValue())

	err := s.Appraise(9999, time.Now().UTC())
	var already *sample.AlreadyAppraisedError
	require.ErrorAs(t, err, &already)
	// Value fixed by the first appraisal
	assert.Equal(t, 1200, s.AppraisedValue())
}

func TestOreSample_SellRequiresAppraisal(t *testing.T) {
	s := sample.NewOreSample("s-2", shared.MustNewOwnerID(1), "IRON_ORE", 10, 0.5, time.Now().UTC())

	err := s.MarkSold()
	var notAppraised *sample.NotAppraisedError
	require.ErrorAs(t, err, &notAppraised)

	require.NoError(t, s.Appraise(500, time.Now().UTC()))
	require.NoError(t, s.MarkSold())
	assert.Equal(t, sample.StateSold, s.State())

	// Sold samples cannot be sold again
	assert.Error(t, s.MarkSold())
}
