package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
	"github.com/asquebay/simple-storefront/internal/model"
	"github.com/asquebay/simple-storefront/internal/repository/payments"
)

// шаблон подставляет сам платёжный провайдер
const successPath = "/checkout/success?session_id={CHECKOUT_SESSION_ID}"

// PaymentService создаёт платёжные сессии для покупки товара
type PaymentService struct {
	products ProductReader
	checkout CheckoutProvider
	baseURL  string
	log      *slog.Logger
}

func NewPaymentService(products ProductReader, checkout CheckoutProvider, baseURL string, log *slog.Logger) *PaymentService {
	return &PaymentService{
		products: products,
		checkout: checkout,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}
}

// CheckoutProduct возвращает ссылку на страницу оплаты товара
func (s *PaymentService) CheckoutProduct(ctx context.Context, in model.CheckoutProductInput) (model.CheckoutResult, error) {
	const op = "service.PaymentService.CheckoutProduct"
	log := s.log.With(slog.String("op", op), slog.String("product_id", in.ProductID))

	actor, err := requireIdentity(ctx)
	if err != nil {
		return model.CheckoutResult{}, fail(log, op, err)
	}
	if err := model.Validate(in); err != nil {
		return model.CheckoutResult{}, fail(log, op, err)
	}

	product, err := s.products.GetProduct(ctx, in.ProductID)
	if err != nil {
		return model.CheckoutResult{}, fail(log, op, repoError(err, "product"))
	}
	if product.PriceID == "" {
		return model.CheckoutResult{}, fail(log, op, apperr.BadRequestf("product is not available for purchase"))
	}

	url, err := s.checkout.CreateCheckoutSession(ctx, payments.Checkout{
		PriceID:    product.PriceID,
		Quantity:   int64(in.Quantity),
		Email:      actor.Email,
		ClientRef:  actor.ID,
		SuccessURL: s.baseURL + successPath,
		CancelURL:  s.baseURL + model.ProductPath(product.ID),
	})
	if err != nil {
		return model.CheckoutResult{}, fail(log, op, apperr.Internalw(err, "failed to create checkout session"))
	}

	log.Info("checkout session created", slog.String("user_id", actor.ID))
	return model.CheckoutResult{Message: "checkout session created", URL: url}, nil
}
