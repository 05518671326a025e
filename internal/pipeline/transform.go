package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juank27/alegra-api/internal"
)

// Transform builds one bill per group. Groups whose rows disagree on
// the provider are excluded from the output and reported; every other
// parse problem degrades to an absent value and is left for the
// remote API to judge.
func Transform(groups []internal.DocumentGroup, templateID int) ([]internal.Bill, []internal.GroupingError) {
	bills := make([]internal.Bill, 0, len(groups))
	var groupErrs []internal.GroupingError

	for _, group := range groups {
		if len(group.Rows) == 0 {
			continue
		}
		if provider, ok := sharedProvider(group); !ok {
			groupErrs = append(groupErrs, internal.GroupingError{
				GroupID: group.ID,
				Message: fmt.Sprintf("rows disagree on provider (%s)", provider),
			})
			continue
		}
		bills = append(bills, toBill(group, templateID))
	}
	return bills, groupErrs
}

// sharedProvider checks that every row carries the first row's
// provider value. On mismatch it returns the conflicting values.
func sharedProvider(group internal.DocumentGroup) (string, bool) {
	first := strings.TrimSpace(group.Rows[0]["provider"])
	for _, row := range group.Rows[1:] {
		if got := strings.TrimSpace(row["provider"]); got != first {
			return first + " vs " + got, false
		}
	}
	return first, true
}

func toBill(group internal.DocumentGroup, templateID int) internal.Bill {
	first := group.Rows[0]

	items := make([]internal.BillItem, 0, len(group.Rows))
	retentions := []internal.Retention{}
	for _, row := range group.Rows {
		items = append(items, toItem(row))
		if strings.TrimSpace(row["retentions_id"]) != "" {
			retentions = append(retentions, internal.Retention{
				ID:     intPtr(row, "retentions_id"),
				Amount: floatPtr(row, "retentions_amount"),
			})
		}
	}

	bill := internal.Bill{
		ExternalID:        intValue(group.ID),
		Purchases:         internal.Purchases{Items: items},
		NumberTemplate:    internal.NumberTemplateRef{ID: templateID},
		Date:              first["date"],
		DueDate:           first["dueDate"],
		TermsConditions:   first["termsConditions"],
		PaymentMethod:     first["paymentMethod"],
		PaymentType:       first["paymentType"],
		BillOperationType: first["billOperationType"],
		Provider:          intPtr(first, "provider"),
		Observations:      first["observations"],
		Retentions:        retentions,
		Stamp:             internal.Stamp{GenerateStamp: first["stamp"] != "false"},
	}

	if code := strings.TrimSpace(first["currency_code"]); code != "" {
		bill.Currency = &internal.Currency{
			Code:         code,
			ExchangeRate: floatPtr(first, "currency_exchangeRate"),
		}
	}

	return bill
}

func toItem(row internal.Row) internal.BillItem {
	item := internal.BillItem{
		ID:           intPtr(row, "purchases_id"),
		Name:         row["purchases_name"],
		Discount:     floatValue(row["purchases_discount"]),
		Observations: row["purchases_observations"],
		Quantity:     intPtr(row, "purchases_quantity"),
		Price:        floatPtr(row, "purchases_price"),
		Total:        floatPtr(row, "purchases_total"),
		Subtotal:     floatPtr(row, "purchases_subtotal"),
		Tax:          []internal.BillItemTax{},
	}

	if strings.TrimSpace(row["tax_id"]) != "" {
		item.Tax = append(item.Tax, internal.BillItemTax{
			ID:         intValue(row["tax_id"]),
			Percentaje: floatValue(row["tax_percentaje"]),
		})
	}

	return item
}

func intPtr(row internal.Row, key string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(row[key]))
	if err != nil {
		return nil
	}
	return &v
}

func floatPtr(row internal.Row, key string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(row[key]), 64)
	if err != nil {
		return nil
	}
	return &v
}

func intValue(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func floatValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
