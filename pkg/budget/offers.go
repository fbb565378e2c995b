package budget

// OfferKey identifies one entry of the affiliate offer table.
type OfferKey string

const (
	OfferDebt      OfferKey = "debt"
	OfferSavings   OfferKey = "savings"
	OfferInvest    OfferKey = "invest"
	OfferInsurance OfferKey = "insurance"
	OfferBudget    OfferKey = "budget"
)

// Offer is a product recommendation attached to a strategy.
type Offer struct {
	Name string `json:"name"`
	Link string `json:"link"`
	Icon string `json:"icon"`
}

var offerTable = map[OfferKey]Offer{
	OfferDebt: {
		Name: "0% APR Balance Transfer",
		Link: "https://www.nerdwallet.com/best/credit-cards/balance-transfer",
		Icon: "💳",
	},
	OfferSavings: {
		Name: "High-Yield Savings (5.0%)",
		Link: "https://www.bankrate.com/banking/savings/rates/",
		Icon: "💰",
	},
	OfferInvest: {
		Name: "Robo-Advisor Wealthfront",
		Link: "https://www.betterment.com/",
		Icon: "📈",
	},
	OfferInsurance: {
		Name: "Term Life Insurance",
		Link: "https://www.policygenius.com/",
		Icon: "🛡️",
	},
	OfferBudget: {
		Name: "YNAB (You Need A Budget)",
		Link: "https://www.ynab.com/",
		Icon: "📱",
	},
}

// LookupOffer returns the offer stored under key.
func LookupOffer(key OfferKey) (Offer, bool) {
	offer, ok := offerTable[key]
	return offer, ok
}

// Offers returns a copy of the whole offer table.
func Offers() map[OfferKey]Offer {
	out := make(map[OfferKey]Offer, len(offerTable))
	for k, v := range offerTable {
		out[k] = v
	}
	return out
}

func mustOffer(key OfferKey) Offer {
	offer, ok := offerTable[key]
	if !ok {
		panic("budget: unknown offer " + string(key))
	}
	return offer
}
