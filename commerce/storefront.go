package commerce

import (
	"context"
	"fmt"
	"strings"

	"fstop/apperr"
)

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type Variant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price Money  `json:"price"`
}

type Product struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Handle      string         `json:"handle"`
	Description string         `json:"description"`
	Images      []ProductImage `json:"images"`
	Variants    []Variant      `json:"variants"`
}

type Cart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

const productQuery = `query Product($id: ID!) {
  product(id: $id) {
    id
    title
    handle
    description
    images(first: 1) { edges { node { url altText } } }
    variants(first: 1) { edges { node { id title price { amount currencyCode } } } }
  }
}`

const cartCreateMutation = `mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { id checkoutUrl }
    userErrors { code field message }
  }
}`

const customerCreateMutation = `mutation CustomerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer { id email }
    customerUserErrors { code field message }
  }
}`

// GetProduct returns the product, or nil when the id is unknown.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var data struct {
		Product *struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Handle      string `json:"handle"`
			Description string `json:"description"`
			Images      struct {
				Edges []struct {
					Node ProductImage `json:"node"`
				} `json:"edges"`
			} `json:"images"`
			Variants struct {
				Edges []struct {
					Node Variant `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
	}
	if err := c.do(ctx, "commerce.GetProduct", productQuery, map[string]any{"id": ProductGID(id)}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, nil
	}

	p := &Product{
		ID:          data.Product.ID,
		Title:       data.Product.Title,
		Handle:      data.Product.Handle,
		Description: data.Product.Description,
		Images:      []ProductImage{},
		Variants:    []Variant{},
	}
	for _, e := range data.Product.Images.Edges {
		p.Images = append(p.Images, e.Node)
	}
	for _, e := range data.Product.Variants.Edges {
		p.Variants = append(p.Variants, e.Node)
	}
	return p, nil
}

// CreateCart creates a cart holding one line and returns its hosted checkout URL.
func (c *Client) CreateCart(ctx context.Context, variantID string, quantity int) (*Cart, error) {
	const op = "commerce.CreateCart"
	if variantID == "" || quantity < 1 {
		return nil, apperr.Msg(op, apperr.Validation, "variant and a positive quantity are required")
	}

	var data struct {
		CartCreate struct {
			Cart       *Cart       `json:"cart"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"cartCreate"`
	}
	vars := map[string]any{
		"input": map[string]any{
			"lines": []map[string]any{{"merchandiseId": variantID, "quantity": quantity}},
		},
	}
	if err := c.do(ctx, op, cartCreateMutation, vars, &data); err != nil {
		return nil, err
	}
	if len(data.CartCreate.UserErrors) > 0 {
		return nil, apperr.E(op, apperr.Validation, fmt.Errorf("%w: %s", ErrUpstream, data.CartCreate.UserErrors[0].Message))
	}
	if data.CartCreate.Cart == nil {
		return nil, apperr.E(op, apperr.Internal, fmt.Errorf("%w: no cart returned", ErrUpstream))
	}
	return data.CartCreate.Cart, nil
}

// SubscribeEmail creates a marketing-opted-in customer. An email that already
// exists yields ErrDuplicateSubscription.
func (c *Client) SubscribeEmail(ctx context.Context, email string) (*Customer, error) {
	const op = "commerce.SubscribeEmail"

	var data struct {
		CustomerCreate struct {
			Customer   *Customer   `json:"customer"`
			UserErrors []UserError `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}
	vars := map[string]any{
		"input": map[string]any{
			"email":            email,
			"password":         generatedPassword(),
			"acceptsMarketing": true,
		},
	}
	if err := c.do(ctx, op, customerCreateMutation, vars, &data); err != nil {
		return nil, err
	}

	for _, ue := range data.CustomerCreate.UserErrors {
		if isDuplicate(ue) {
			return nil, ErrDuplicateSubscription
		}
	}
	if len(data.CustomerCreate.UserErrors) > 0 {
		return nil, apperr.E(op, apperr.Internal, fmt.Errorf("%w: %s", ErrUpstream, data.CustomerCreate.UserErrors[0].Message))
	}
	if data.CustomerCreate.Customer == nil {
		return nil, apperr.E(op, apperr.Internal, fmt.Errorf("%w: no customer returned", ErrUpstream))
	}
	return data.CustomerCreate.Customer, nil
}

func isDuplicate(ue UserError) bool {
	if ue.Code == "TAKEN" || ue.Code == "CUSTOMER_DISABLED" {
		return true
	}
	msg := strings.ToLower(ue.Message)
	return strings.Contains(msg, "taken") || strings.Contains(msg, "already exists")
}
