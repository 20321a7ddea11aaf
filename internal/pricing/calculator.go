// Package pricing computes rental prices from a vehicle rate card.
//
// Daily rentals are tiered: once a booking crosses 10, 15, 25 or 30 days the
// matching flat package replaces the per-day rate. Packages are never prorated,
// so 45 days cost the same as 30.
package pricing

// Tier is one row of the daily price table.
type Tier struct {
	Name        string
	MinDays     int
	NominalDays int
	amount      func(RateCard) float64
}

// Amount is the rate card figure the tier charges. For the per-day tier this
// is the daily rate, not the total.
func (t Tier) Amount(card RateCard) float64 {
	return t.amount(card)
}

// Flat reports whether the tier charges one package price regardless of day count.
func (t Tier) Flat() bool {
	return t.NominalDays > 1
}

// Highest threshold first; the first match wins.
var dailyTiers = []Tier{
	{Name: "monthly", MinDays: 30, NominalDays: 30, amount: func(c RateCard) float64 { return c.Monthly }},
	{Name: "twenty_five_day_package", MinDays: 25, NominalDays: 25, amount: func(c RateCard) float64 { return c.TwentyFiveDayPackage }},
	{Name: "fifteen_day_package", MinDays: 15, NominalDays: 15, amount: func(c RateCard) float64 { return c.FifteenDayPackage }},
	{Name: "ten_day_package", MinDays: 10, NominalDays: 10, amount: func(c RateCard) float64 { return c.TenDayPackage }},
	{Name: "daily", MinDays: 1, NominalDays: 1, amount: func(c RateCard) float64 { return c.Daily }},
}

// TierForDays returns the tier a daily booking of the given length falls in.
// Day counts below one fall through to the per-day tier.
func TierForDays(days int) Tier {
	for _, t := range dailyTiers {
		if days >= t.MinDays {
			return t
		}
	}
	return dailyTiers[len(dailyTiers)-1]
}

// CalculatePrice returns the price of req against card. A nil card prices to 0.
// Magnitudes are not validated here; see DurationRequest.Validate.
func CalculatePrice(card *RateCard, req DurationRequest) float64 {
	if card == nil {
		return 0
	}
	switch req.Kind {
	case KindHourly:
		return card.Hourly * float64(req.Amount)
	case KindMonthly:
		return card.Monthly * float64(req.Amount)
	case KindDaily:
		tier := TierForDays(req.Amount)
		if tier.Flat() {
			return tier.Amount(*card)
		}
		return tier.Amount(*card) * float64(req.Amount)
	}
	return 0
}

// EffectiveDailyRate is the tier amount divided by the tier's nominal day
// count. It is for display only and uses the same tiers as CalculatePrice.
func EffectiveDailyRate(card *RateCard, days int) float64 {
	if card == nil {
		return 0
	}
	tier := TierForDays(days)
	return tier.Amount(*card) / float64(tier.NominalDays)
}
