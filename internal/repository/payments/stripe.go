package payments

import (
	"context"
	"fmt"

	"github.com/asquebay/simple-storefront/internal/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Checkout описывает платёжную сессию на один товар
type Checkout struct {
	PriceID    string
	Quantity   int64
	Email      string
	ClientRef  string
	SuccessURL string
	CancelURL  string
}

// Processor — обёртка над API платёжного провайдера
type Processor struct {
	api      *client.API
	currency string
}

// New создаёт клиент платёжного провайдера
func New(cfg config.Payments) *Processor {
	return NewWithBackends(cfg, nil)
}

// NewWithBackends позволяет подменить сетевой бэкенд (нужно в тестах)
func NewWithBackends(cfg config.Payments, backends *stripe.Backends) *Processor {
	return &Processor{
		api:      client.New(cfg.SecretKey, backends),
		currency: cfg.Currency,
	}
}

// CreatePrice регистрирует цену товара и возвращает её идентификатор
func (p *Processor) CreatePrice(ctx context.Context, title string, amount int64) (string, error) {
	const op = "repository.payments.CreatePrice"

	params := &stripe.PriceParams{
		Currency:   stripe.String(p.currency),
		UnitAmount: stripe.Int64(amount),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(title),
		},
	}
	params.Context = ctx

	price, err := p.api.Prices.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create price: %w", op, err)
	}
	return price.ID, nil
}

// ArchivePrice деактивирует цену, удалить цену у провайдера нельзя
func (p *Processor) ArchivePrice(ctx context.Context, priceID string) error {
	const op = "repository.payments.ArchivePrice"

	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx

	if _, err := p.api.Prices.Update(priceID, params); err != nil {
		return fmt.Errorf("%s: failed to archive price %s: %w", op, priceID, err)
	}
	return nil
}

// CreateCheckoutSession создаёт платёжную сессию и возвращает адрес для перенаправления
func (p *Processor) CreateCheckoutSession(ctx context.Context, c Checkout) (string, error) {
	const op = "repository.payments.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.PriceID),
				Quantity: stripe.Int64(c.Quantity),
			},
		},
		SuccessURL: stripe.String(c.SuccessURL),
		CancelURL:  stripe.String(c.CancelURL),
	}
	if c.Email != "" {
		params.CustomerEmail = stripe.String(c.Email)
	}
	if c.ClientRef != "" {
		params.ClientReferenceID = stripe.String(c.ClientRef)
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create checkout session: %w", op, err)
	}
	return s.URL, nil
}
