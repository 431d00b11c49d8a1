package plaid

import (
	"github.com/easy-csp/csp/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
)

// Plaid's personal finance category taxonomy is far wider than the plan's
// closed category set, so the mapping is deliberately coarse. Anything
// unmapped arrives uncategorized and is assigned by hand with
// `csp transactions categorize`.
var categoryByDetailed = map[string]model.Category{
	"RENT_AND_UTILITIES_RENT":                     model.CategoryRent,
	"LOAN_PAYMENTS_MORTGAGE_PAYMENT":              model.CategoryRent,
	"FOOD_AND_DRINK_GROCERIES":                    model.CategoryGroceries,
	"GENERAL_MERCHANDISE_SUBSCRIPTION":            model.CategorySubscriptions,
	"RENT_AND_UTILITIES_INTERNET_AND_CABLE":       model.CategorySubscriptions,
	"INCOME_INTEREST_EARNED":                      model.CategoryInterest,
	"INCOME_WAGES":                                model.CategorySalary,
	"LOAN_PAYMENTS_CREDIT_CARD_PAYMENT":           model.CategoryCreditCardPayment,
	"GENERAL_SERVICES_INSURANCE":                  model.CategoryInsurance,
	"GENERAL_SERVICES_EDUCATION":                  model.CategoryEducation,
	"TRANSFER_OUT_INVESTMENT_AND_RETIREMENT_FUNDS": model.CategoryRetirement,
	"TRANSFER_OUT_SAVINGS":                        model.CategoryEmergencyFund,
	"TRAVEL_FLIGHTS":                              model.CategoryVacation,
	"TRAVEL_LODGING":                              model.CategoryVacation,
}

var categoryByPrimary = map[string]model.Category{
	"INCOME":             model.CategorySalary,
	"RENT_AND_UTILITIES": model.CategoryUtilities,
	"FOOD_AND_DRINK":     model.CategoryDining,
	"TRANSPORTATION":     model.CategoryTransportation,
	"ENTERTAINMENT":      model.CategoryEntertainment,
	"GENERAL_MERCHANDISE": model.CategoryShopping,
	"PERSONAL_CARE":      model.CategoryShopping,
	"TRANSFER_IN":        model.CategoryTransfer,
	"TRANSFER_OUT":       model.CategoryTransfer,
	"BANK_FEES":          model.CategoryUtilities,
	"LOAN_PAYMENTS":      model.CategoryCreditCardPayment,
}

// categoryFromPlaid maps a provider transaction onto the closed taxonomy,
// detailed category first, then primary, then uncategorized.
func categoryFromPlaid(pt plaid.Transaction) model.Category {
	pfc := pt.GetPersonalFinanceCategory()

	if c, ok := categoryByDetailed[pfc.GetDetailed()]; ok {
		return c
	}
	if c, ok := categoryByPrimary[pfc.GetPrimary()]; ok {
		return c
	}
	return ""
}
