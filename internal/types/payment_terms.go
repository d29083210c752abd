package types

import (
	"regexp"
	"strconv"
	"strings"
)

// PaymentTermsKind is the coarse classification of free-text payment terms.
type PaymentTermsKind string

const (
	PaymentTermsCash    PaymentTermsKind = "cash"
	PaymentTermsNetDays PaymentTermsKind = "net_days"
	PaymentTermsCredit  PaymentTermsKind = "credit"
	PaymentTermsUnknown PaymentTermsKind = "unknown"
)

// PaymentTerms is the classified form of a payment-terms cell.
type PaymentTerms struct {
	Kind PaymentTermsKind `json:"kind"`
	// Days is set only for PaymentTermsNetDays.
	Days int `json:"days,omitempty"`
}

var daysPattern = regexp.MustCompile(`(\d{1,3})\s*(DIAS|DÍAS|DIA|DÍA|D)\b`)

var cashWords = []string{"CONTADO", "EFECTIVO", "INMEDIATO", "ANTICIPADO", "CASH"}

// ClassifyPaymentTerms maps free text such as "Contado", "30 días" or
// "Crédito" to a PaymentTerms value. Unrecognized or placeholder text is
// PaymentTermsUnknown.
func ClassifyPaymentTerms(text string) PaymentTerms {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" || upper == PlaceholderText {
		return PaymentTerms{Kind: PaymentTermsUnknown}
	}

	if m := daysPattern.FindStringSubmatch(upper); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			if days == 0 {
				return PaymentTerms{Kind: PaymentTermsCash}
			}
			return PaymentTerms{Kind: PaymentTermsNetDays, Days: days}
		}
	}

	for _, word := range cashWords {
		if strings.Contains(upper, word) {
			return PaymentTerms{Kind: PaymentTermsCash}
		}
	}

	if strings.Contains(upper, "CREDITO") || strings.Contains(upper, "CRÉDITO") {
		return PaymentTerms{Kind: PaymentTermsCredit}
	}

	return PaymentTerms{Kind: PaymentTermsUnknown}
}
