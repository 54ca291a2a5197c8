package attendance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconcileBankedLeave(t *testing.T) {
	tests := []struct {
		name             string
		old, ot, comp    string
		personal         string
		expectedBalance  string
		expectedConsumed string
		expectedPersonal string
	}{
		{
			name: "deficit absorbed into personal leave",
			old:  "2", ot: "1", comp: "5", personal: "0",
			expectedBalance: "0", expectedConsumed: "3", expectedPersonal: "2",
		},
		{
			name: "nothing to reconcile",
			old:  "0", ot: "0", comp: "0", personal: "0",
			expectedBalance: "0", expectedConsumed: "0", expectedPersonal: "0",
		},
		{
			name: "overtime banks into balance",
			old:  "1.5", ot: "2", comp: "0.5", personal: "1",
			expectedBalance: "3", expectedConsumed: "0.5", expectedPersonal: "1",
		},
		{
			name: "exact cover leaves zero balance without deficit",
			old:  "1", ot: "1", comp: "2", personal: "0.5",
			expectedBalance: "0", expectedConsumed: "2", expectedPersonal: "0.5",
		},
		{
			name: "no balance at all turns comp leave into personal leave",
			old:  "0", ot: "0", comp: "1.5", personal: "1",
			expectedBalance: "0", expectedConsumed: "0", expectedPersonal: "2.5",
		},
		{
			name: "negative carried balance never raises consumption",
			old:  "-2", ot: "1", comp: "1", personal: "0",
			expectedBalance: "0", expectedConsumed: "0", expectedPersonal: "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ReconcileBankedLeave(d(tt.old), d(tt.ot), d(tt.comp), d(tt.personal))

			assert.True(t, d(tt.expectedBalance).Equal(b.NewBalance), "balance %s", b.NewBalance)
			assert.True(t, d(tt.expectedConsumed).Equal(b.CompLeaveConsumed), "consumed %s", b.CompLeaveConsumed)
			assert.True(t, d(tt.expectedPersonal).Equal(b.PersonalLeave), "personal %s", b.PersonalLeave)
		})
	}
}

func TestReconcileBankedLeave_Invariants(t *testing.T) {
	values := []string{"0", "0.5", "1", "2.5", "7"}

	for _, old := range values {
		for _, ot := range values {
			for _, comp := range values {
				b := ReconcileBankedLeave(d(old), d(ot), d(comp), d("1"))

				assert.False(t, b.NewBalance.IsNegative(), "old=%s ot=%s comp=%s", old, ot, comp)

				limit := decimal.Max(decimal.Zero, d(old).Add(d(ot)))
				assert.True(t, b.CompLeaveConsumed.LessThanOrEqual(limit), "old=%s ot=%s comp=%s", old, ot, comp)

				if d(old).Add(d(ot)).GreaterThanOrEqual(d(comp)) {
					assert.True(t, b.PersonalLeave.Equal(d("1")), "old=%s ot=%s comp=%s", old, ot, comp)
					assert.True(t, b.Deficit().IsZero())
				} else {
					// consumed comp leave plus deficit accounts for every requested day
					assert.True(t, b.CompLeaveConsumed.Add(b.Deficit()).Equal(d(comp)))
				}
			}
		}
	}
}
