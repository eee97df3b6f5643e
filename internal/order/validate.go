package order

import (
	"context"
	"fmt"

	"github.com/noah-isme/pricing-engine/internal/inventory"
)

// Validate checks the order, user and payment and reports every violation found, in the
// order it was detected. It never stops at the first problem. The shipping selection is
// accepted for signature parity with pricing; no rule reads it yet. stock may be nil.
func Validate(ctx context.Context, o *Order, u *User, p *Payment, _ *Shipping, stock inventory.Checker) Report {
	var errs []string
	errs = append(errs, validateOrder(ctx, o, stock)...)
	errs = append(errs, validateUser(u)...)
	errs = append(errs, validatePayment(p)...)
	if errs == nil {
		errs = []string{}
	}
	return Report{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: []string{},
	}
}

func validateOrder(ctx context.Context, o *Order, stock inventory.Checker) []string {
	switch {
	case o == nil:
		return []string{"Pedido não informado"}
	case o.Items == nil:
		return []string{"Itens do pedido não informados"}
	case len(o.Items) == 0:
		return []string{"Pedido sem itens"}
	}
	var errs []string
	for i, it := range o.Items {
		errs = append(errs, validateItem(ctx, i, it, stock)...)
	}
	return errs
}

func validateItem(ctx context.Context, index int, it *Item, stock inventory.Checker) []string {
	if it == nil {
		return []string{fmt.Sprintf("Item inválido na posição %d", index)}
	}
	var errs []string
	if it.ID == "" {
		errs = append(errs, fmt.Sprintf("ID do item não informado (posição %d)", index))
	}
	if it.Quantity.IsZero() {
		errs = append(errs, fmt.Sprintf("Quantidade não informada para item %s", it.ID))
	}
	if it.Price.IsZero() {
		errs = append(errs, fmt.Sprintf("Preço não informado para item %s", it.ID))
	}
	if !it.Quantity.IsPositive() {
		errs = append(errs, fmt.Sprintf("Quantidade inválida para item %s", it.ID))
	}
	if !it.Price.IsPositive() {
		errs = append(errs, fmt.Sprintf("Preço inválido para item %s", it.ID))
	}
	if it.ID != "" && it.Quantity.IsPositive() && stock != nil {
		available, err := stock.CheckStock(ctx, it.ID, it.Quantity)
		if err == nil && !available {
			errs = append(errs, fmt.Sprintf("Item %s não disponível em estoque", it.ID))
		}
	}
	return errs
}

func validateUser(u *User) []string {
	if u == nil {
		return []string{"Usuário não informado"}
	}
	var errs []string
	if u.ID == "" {
		errs = append(errs, "ID do usuário não informado")
	}
	if u.Email == "" {
		errs = append(errs, "Email do usuário não informado")
	}
	if u.Address == "" {
		errs = append(errs, "Endereço do usuário não informado")
	}
	return errs
}

func validatePayment(p *Payment) []string {
	if p == nil {
		return []string{"Informações de pagamento não fornecidas"}
	}
	var errs []string
	if p.Method == "" {
		errs = append(errs, "Método de pagamento não informado")
	}
	if !p.Amount.Valid || p.Amount.Decimal.IsZero() {
		errs = append(errs, "Valor do pagamento não informado")
	}
	if p.Amount.Valid && !p.Amount.Decimal.IsPositive() {
		errs = append(errs, "Valor do pagamento inválido")
	}
	return errs
}
