package marketplace

// Wire types for the Mercado Livre REST API. Only the fields the sync reads
// are mapped; the raw payload is stored alongside for anything else.

type meliTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	UserID       int64  `json:"user_id"`
}

type meliErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

type meliSearchResponse struct {
	Results []meliOrder `json:"results"`
	Paging  meliPaging  `json:"paging"`
}

type meliPaging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type meliOrder struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	DateCreated string          `json:"date_created"`
	TotalAmount float64         `json:"total_amount"`
	Buyer       meliBuyer       `json:"buyer"`
	OrderItems  []meliOrderItem `json:"order_items"`
	Shipping    meliShippingRef `json:"shipping"`
}

type meliBuyer struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

type meliOrderItem struct {
	Item        meliItem `json:"item"`
	Quantity    int64    `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
	SaleFee     float64  `json:"sale_fee"`
	ListingType string   `json:"listing_type_id"`
}

type meliItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SellerSKU string `json:"seller_sku"`
}

type meliShippingRef struct {
	ID int64 `json:"id"`
}

type meliShipment struct {
	ID           int64                `json:"id"`
	LogisticType string               `json:"logistic_type"`
	Mode         string               `json:"mode"`
	ShippingOpt  meliShippingOption   `json:"shipping_option"`
}

type meliShippingOption struct {
	// Pointers keep "absent" and "zero" apart; the freight rules treat
	// them differently.
	ListCost *float64 `json:"list_cost"`
	BaseCost *float64 `json:"base_cost"`
	Cost     *float64 `json:"cost"`
}
