// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/kisanexport/storefront/internal/cart"
	"github.com/kisanexport/storefront/internal/config"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/utils"
)

const PaymentStatusSucceeded = "succeeded"

// PaymentIntent is the gateway-neutral view of a payment. Amount is in minor units.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// StripeGateway talks to Stripe PaymentIntents.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create payment intent")
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get payment intent")
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

type PaymentService struct {
	gateway  PaymentGateway
	currency string
}

type StartCheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
}

// CheckoutSession is handed to the client to complete payment. CheckoutKey
// must be sent back as the order's idempotency key.
type CheckoutSession struct {
	CheckoutKey  string          `json:"checkout_key"`
	PaymentID    string          `json:"payment_id"`
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// NewPaymentService builds a PaymentService. A nil gateway disables online
// payment; orders are then accepted without gateway verification.
func NewPaymentService(gateway PaymentGateway, cfg config.PaymentConfig) *PaymentService {
	currency := cfg.Currency
	if currency == "" {
		currency = "inr"
	}
	return &PaymentService{
		gateway:  gateway,
		currency: currency,
	}
}

func (s *PaymentService) Enabled() bool {
	return s != nil && s.gateway != nil
}

// StartCheckout opens a payment for the cart total. The cart is left untouched.
func (s *PaymentService) StartCheckout(ctx context.Context, userID uuid.UUID, c *cart.Cart, req *StartCheckoutRequest) (*CheckoutSession, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return nil, ErrPaymentUnavailable
	}

	total := c.Total()
	key := uuid.NewString()
	pi, err := s.gateway.CreatePaymentIntent(ctx, utils.ToMinorUnits(total), s.currency, key, map[string]string{
		"user_id":      userID.String(),
		"checkout_key": key,
		"item_count":   fmt.Sprint(c.Count()),
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutSession{
		CheckoutKey:  key,
		PaymentID:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       total,
		Currency:     s.currency,
	}, nil
}

// VerifyPayment checks that paymentID was captured for exactly total and,
// when the intent names its checkout user, that userID opened it.
func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID string, userID uuid.UUID, total decimal.Decimal) error {
	if !s.Enabled() {
		logrus.WithField("payment_id", paymentID).Warn("Payment gateway not configured, accepting payment unverified")
		return nil
	}

	pi, err := s.gateway.GetPaymentIntent(ctx, paymentID)
	if err != nil {
		return err
	}
	if pi.Status != PaymentStatusSucceeded {
		return errors.Wrapf(ErrPaymentNotCompleted, "payment %s is %s", paymentID, pi.Status)
	}
	if pi.Amount != utils.ToMinorUnits(total) {
		return errors.Wrapf(ErrPaymentNotCompleted, "payment %s amount %d does not match order total", paymentID, pi.Amount)
	}
	if owner, ok := pi.Metadata["user_id"]; ok && owner != userID.String() {
		return errors.Wrapf(ErrForbidden, "payment %s belongs to another customer", paymentID)
	}
	return nil
}
