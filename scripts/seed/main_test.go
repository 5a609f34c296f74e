package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoLeadsAreStable(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	first := demoLeads(now)
	second := demoLeads(now)
	require.Len(t, first, 60)
	assert.Equal(t, first, second)
	assert.Equal(t, "andi.1@acme-indonesia.example", first[0].Email)
	assert.Equal(t, now, first[0].CreatedAt)
	assert.Equal(t, now.Add(-59*24*time.Hour), first[59].CreatedAt)
}

func TestDemoOpportunitiesLinkQualifiedLeads(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	leads := demoLeads(now)
	ids := make([]uuid.UUID, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}
	opps := demoOpportunities(now, ids, map[string]int64{"Borneo Logistics": 4, "CV Mitra Teknik": 2})

	var withLead, withVendor int
	for _, o := range opps {
		if o.LeadID != nil {
			withLead++
		}
		if o.VendorID != nil {
			withVendor++
		}
	}
	assert.Equal(t, 15, withLead)
	assert.Equal(t, 2, withVendor)
	last := opps[len(opps)-1]
	assert.Equal(t, "Supply agreement with CV Mitra Teknik", last.Title)
	assert.Equal(t, int64(2), *last.VendorID)
}
