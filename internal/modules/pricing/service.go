// README: Pricing service computes booking quotes from rate cards.
package pricing

import (
	"context"
	"time"

	"wireconnect/internal/types"
)

// Night callout window and surcharge, percent of the base fare.
const (
	nightStartHour    = 22
	nightEndHour      = 6
	nightSurchargePct = 25
)

type rateSource interface {
	GetRate(ctx context.Context, category, state string) (Rate, error)
}

type Service struct {
	rates rateSource
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{rates: store, now: time.Now}
}

// Quote prices a booking from the rate card: base fare plus callout fee, with
// a night surcharge when the request lands inside the night window.
func (s *Service) Quote(ctx context.Context, category, state string) (types.Money, error) {
	rate, err := s.rates.GetRate(ctx, category, state)
	if err != nil {
		return types.Money{}, err
	}

	amount := rate.BaseFare + rate.CalloutFee
	if isNight(s.now()) {
		amount += rate.BaseFare * nightSurchargePct / 100
	}
	return types.Money{Amount: amount, Currency: rate.Currency}, nil
}

func isNight(t time.Time) bool {
	h := t.Hour()
	return h >= nightStartHour || h < nightEndHour
}
