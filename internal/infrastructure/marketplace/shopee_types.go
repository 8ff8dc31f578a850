package marketplace

// Wire types for the Shopee OpenAPI v2. Responses wrap the payload in a
// "response" object and report failures through the top-level error field.

type shopeeEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type shopeeTokenResponse struct {
	shopeeEnvelope
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"`
}

type shopeeOrderListResponse struct {
	shopeeEnvelope
	Response shopeeOrderList `json:"response"`
}

type shopeeOrderList struct {
	More       bool               `json:"more"`
	NextCursor string             `json:"next_cursor"`
	OrderList  []shopeeOrderEntry `json:"order_list"`
}

type shopeeOrderEntry struct {
	OrderSN string `json:"order_sn"`
}

type shopeeOrderDetailResponse struct {
	shopeeEnvelope
	Response shopeeOrderDetailList `json:"response"`
}

type shopeeOrderDetailList struct {
	OrderList []shopeeOrderDetail `json:"order_list"`
}

type shopeeOrderDetail struct {
	OrderSN             string            `json:"order_sn"`
	OrderStatus         string            `json:"order_status"`
	CreateTime          int64             `json:"create_time"`
	TotalAmount         float64           `json:"total_amount"`
	BuyerUsername       string            `json:"buyer_username"`
	ShippingCarrier     string            `json:"shipping_carrier"`
	ActualShippingFee   *float64          `json:"actual_shipping_fee"`
	EstimatedShipping   *float64          `json:"estimated_shipping_fee"`
	BuyerPaidShipping   *float64          `json:"buyer_paid_shipping_fee"`
	ShippingRebate      *float64          `json:"shopee_shipping_rebate"`
	ShippingDiscount3PL *float64          `json:"shipping_fee_discount_from_3pl"`
	ItemList            []shopeeOrderItem `json:"item_list"`
}

type shopeeOrderItem struct {
	ItemName        string  `json:"item_name"`
	ItemSKU         string  `json:"item_sku"`
	ModelQuantity   int64   `json:"model_quantity_purchased"`
	ModelDiscounted float64 `json:"model_discounted_price"`
}
