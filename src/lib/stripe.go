package lib

import (
	"context"
	"math"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreatePaymentIntent requests an uncaptured payment artifact for the given
// amount. The caller confirms the intent separately; nothing is charged here.
func CreatePaymentIntent(amount float32, currency string, metadata map[string]string) (string, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(int64(math.Round(float64(amount) * 100))),
		Currency: stripe.String(currency),
		Metadata: metadata,
	}
	intent, err := sc.V1PaymentIntents.Create(context.Background(), &params)
	if err != nil {
		return "", err
	}
	return intent.ID, nil
}
