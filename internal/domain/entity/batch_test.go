package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

func TestBatch_IsExpired(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 1, 0)

	sinVencimiento := &entity.Batch{}
	assert.False(t, sinVencimiento.IsExpired(now), "sin fecha de vencimiento nunca vence")

	vencido := &entity.Batch{ExpiryDate: &past}
	assert.True(t, vencido.IsExpired(now))

	vigente := &entity.Batch{ExpiryDate: &future}
	assert.False(t, vigente.IsExpired(now))
}

func TestBatch_EffectivePrice(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	promo := decimal.NewFromInt(800)
	hastaFuturo := now.AddDate(0, 0, 10)
	hastaPasado := now.AddDate(0, 0, -1)

	b := &entity.Batch{UnitPrice: decimal.NewFromInt(1000)}
	assert.Equal(t, "1000", b.EffectivePrice(now).String(), "sin promoción rige el precio normal")

	b.PromotionPrice = &promo
	b.PromotionUntil = &hastaFuturo
	assert.Equal(t, "800", b.EffectivePrice(now).String(), "promoción vigente")

	b.PromotionUntil = &hastaPasado
	assert.Equal(t, "1000", b.EffectivePrice(now).String(), "promoción vencida no aplica")

	b.PromotionUntil = nil
	assert.Equal(t, "800", b.EffectivePrice(now).String(), "promoción sin límite de fecha")
}
