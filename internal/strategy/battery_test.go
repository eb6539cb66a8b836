package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcwang/marketscan/internal/contracts"
)

func TestDefaultBattery(t *testing.T) {
	priceOnly := DefaultBattery(false)
	assert.Len(t, priceOnly, 8)
	for _, s := range priceOnly {
		assert.Equal(t, contracts.KindPrice, s.Kind(), s.Name())
	}

	full := DefaultBattery(true)
	assert.Len(t, full, 10)

	flowCount := 0
	names := make(map[string]bool)
	for _, s := range full {
		assert.False(t, names[s.Name()], "duplicate strategy name %s", s.Name())
		names[s.Name()] = true
		if s.Kind() == contracts.KindFlow {
			flowCount++
		}
	}
	assert.Equal(t, 2, flowCount)
}

func TestBatteryOrderIsStable(t *testing.T) {
	a := DefaultBattery(true)
	b := DefaultBattery(true)
	for i := range a {
		assert.Equal(t, a[i].Name(), b[i].Name())
	}
}
