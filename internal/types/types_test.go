package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPaymentTerms(t *testing.T) {
	cases := []struct {
		in   string
		want PaymentTerms
	}{
		{"Contado", PaymentTerms{Kind: PaymentTermsCash}},
		{"pago en efectivo", PaymentTerms{Kind: PaymentTermsCash}},
		{"30 días", PaymentTerms{Kind: PaymentTermsNetDays, Days: 30}},
		{"a 60 dias", PaymentTerms{Kind: PaymentTermsNetDays, Days: 60}},
		{"0 dias", PaymentTerms{Kind: PaymentTermsCash}},
		{"Crédito", PaymentTerms{Kind: PaymentTermsCredit}},
		{"credito directo", PaymentTerms{Kind: PaymentTermsCredit}},
		{"", PaymentTerms{Kind: PaymentTermsUnknown}},
		{PlaceholderText, PaymentTerms{Kind: PaymentTermsUnknown}},
		{"vale vista", PaymentTerms{Kind: PaymentTermsUnknown}},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyPaymentTerms(tc.in))
		})
	}
}

func TestConsolidatedRecordReviewFlags(t *testing.T) {
	var rec ConsolidatedRecord
	assert.False(t, rec.HasDetails())
	assert.False(t, rec.NeedsReview())

	rec.Details = []DetailRecord{{OrderNumber: "OC-1", CostCenterCode: "CC-1"}}
	assert.True(t, rec.HasDetails())

	rec.ConflictingCostCenters = []string{"CC-1", "CC-2"}
	assert.True(t, rec.NeedsReview())

	rec = ConsolidatedRecord{Placeholder: true}
	assert.True(t, rec.NeedsReview())
}
