package domain

import "time"

// Source column names shared by the raw files and the sales dataset
const (
	ColOrderID               = "order_id"
	ColCustomerID            = "customer_id"
	ColOrderStatus           = "order_status"
	ColPurchaseTimestamp     = "order_purchase_timestamp"
	ColApprovedAt            = "order_approved_at"
	ColDeliveredCarrierDate  = "order_delivered_carrier_date"
	ColDeliveredCustomerDate = "order_delivered_customer_date"
	ColEstimatedDeliveryDate = "order_estimated_delivery_date"

	ColOrderItemID       = "order_item_id"
	ColProductID         = "product_id"
	ColSellerID          = "seller_id"
	ColShippingLimitDate = "shipping_limit_date"
	ColPrice             = "price"
	ColFreightValue      = "freight_value"

	ColProductCategoryName = "product_category_name"

	ColCustomerUniqueID = "customer_unique_id"
	ColCustomerZipCode  = "customer_zip_code_prefix"
	ColCustomerCity     = "customer_city"
	ColCustomerState    = "customer_state"

	ColReviewID           = "review_id"
	ColReviewScore        = "review_score"
	ColReviewCreationDate = "review_creation_date"

	ColPaymentSequential   = "payment_sequential"
	ColPaymentType         = "payment_type"
	ColPaymentInstallments = "payment_installments"
	ColPaymentValue        = "payment_value"

	// Derived columns
	ColPurchaseYear   = "purchase_year"
	ColPurchaseMonth  = "purchase_month"
	ColDeliveryDays   = "delivery_days"
	ColTotalItemValue = "total_item_value"
)

// RawOrder is an orders row as read from the source, timestamps unparsed
type RawOrder struct {
	OrderID               string `json:"order_id"`
	CustomerID            string `json:"customer_id"`
	Status                string `json:"order_status"`
	PurchaseTimestamp     string `json:"order_purchase_timestamp"`
	ApprovedAt            string `json:"order_approved_at,omitempty"`
	DeliveredCarrierDate  string `json:"order_delivered_carrier_date,omitempty"`
	DeliveredCustomerDate string `json:"order_delivered_customer_date"`
	EstimatedDeliveryDate string `json:"order_estimated_delivery_date,omitempty"`
}

// Order is a cleaned order with typed timestamps and derived fields.
// PurchaseYear and PurchaseMonth are zero when the purchase timestamp is unknown.
type Order struct {
	OrderID               string     `json:"order_id"`
	CustomerID            string     `json:"customer_id"`
	Status                string     `json:"order_status"`
	PurchaseTimestamp     *time.Time `json:"order_purchase_timestamp"`
	ApprovedAt            *time.Time `json:"order_approved_at,omitempty"`
	DeliveredCarrierDate  *time.Time `json:"order_delivered_carrier_date,omitempty"`
	DeliveredCustomerDate *time.Time `json:"order_delivered_customer_date"`
	EstimatedDeliveryDate *time.Time `json:"order_estimated_delivery_date,omitempty"`
	PurchaseYear          int        `json:"purchase_year"`
	PurchaseMonth         int        `json:"purchase_month"`
	DeliveryDays          *int       `json:"delivery_days"`
}

// RawOrderItem is an order_items row as read from the source
type RawOrderItem struct {
	OrderID           string  `json:"order_id"`
	OrderItemID       int     `json:"order_item_id"`
	ProductID         string  `json:"product_id"`
	SellerID          string  `json:"seller_id,omitempty"`
	ShippingLimitDate string  `json:"shipping_limit_date,omitempty"`
	Price             float64 `json:"price"`
	FreightValue      float64 `json:"freight_value"`
}

// OrderItem is a cleaned order line item
type OrderItem struct {
	OrderID           string     `json:"order_id"`
	OrderItemID       int        `json:"order_item_id"`
	ProductID         string     `json:"product_id"`
	SellerID          string     `json:"seller_id,omitempty"`
	ShippingLimitDate *time.Time `json:"shipping_limit_date,omitempty"`
	Price             float64    `json:"price"`
	FreightValue      float64    `json:"freight_value"`
	TotalItemValue    float64    `json:"total_item_value"`
}

// Product holds the catalogue fields the analysis needs
type Product struct {
	ProductID    string `json:"product_id"`
	CategoryName string `json:"product_category_name"`
}

// Customer holds the customer location fields
type Customer struct {
	CustomerID    string `json:"customer_id"`
	UniqueID      string `json:"customer_unique_id,omitempty"`
	ZipCodePrefix string `json:"customer_zip_code_prefix,omitempty"`
	City          string `json:"customer_city,omitempty"`
	State         string `json:"customer_state"`
}

// RawReview is an order_reviews row as read from the source
type RawReview struct {
	ReviewID     string `json:"review_id,omitempty"`
	OrderID      string `json:"order_id"`
	Score        *int   `json:"review_score"`
	CreationDate string `json:"review_creation_date,omitempty"`
}

// Review is a cleaned review
type Review struct {
	ReviewID     string     `json:"review_id,omitempty"`
	OrderID      string     `json:"order_id"`
	Score        *int       `json:"review_score"`
	CreationDate *time.Time `json:"review_creation_date,omitempty"`
}

// Payment is an order_payments row
type Payment struct {
	OrderID      string  `json:"order_id"`
	Sequential   int     `json:"payment_sequential"`
	Type         string  `json:"payment_type"`
	Installments int     `json:"payment_installments"`
	Value        float64 `json:"payment_value"`
}

// Source file names inside the data directory
const (
	FileOrders     = "orders_dataset.csv"
	FileOrderItems = "order_items_dataset.csv"
	FileProducts   = "products_dataset.csv"
	FileCustomers  = "customers_dataset.csv"
	FileReviews    = "order_reviews_dataset.csv"
	FilePayments   = "order_payments_dataset.csv"
)

// RequiredFiles must all be present for a load to succeed
var RequiredFiles = []string{FileOrders, FileOrderItems, FileProducts, FileCustomers, FileReviews}

// OptionalFiles are read when present
var OptionalFiles = []string{FilePayments}

// Required columns per raw table
var (
	OrdersRequiredColumns = []string{
		ColOrderID, ColCustomerID, ColOrderStatus, ColPurchaseTimestamp, ColDeliveredCustomerDate,
	}
	OrderItemsRequiredColumns = []string{
		ColOrderID, ColOrderItemID, ColProductID, ColPrice, ColFreightValue,
	}
	ProductsRequiredColumns  = []string{ColProductID, ColProductCategoryName}
	CustomersRequiredColumns = []string{ColCustomerID, ColCustomerState}
	ReviewsRequiredColumns   = []string{ColOrderID, ColReviewScore}
	PaymentsRequiredColumns  = []string{ColOrderID, ColPaymentType, ColPaymentValue}
)
