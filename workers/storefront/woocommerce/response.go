package woocommerce

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (a Address) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

type LineItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
	SKU       string `json:"sku"`
}

type Order struct {
	ID                 int64      `json:"id"`
	Number             string     `json:"number"`
	Status             string     `json:"status"`
	Currency           string     `json:"currency"`
	DateCreated        string     `json:"date_created"`
	Total              string     `json:"total"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	CustomerNote       string     `json:"customer_note"`
	Billing            Address    `json:"billing"`
	Shipping           Address    `json:"shipping"`
	LineItems          []LineItem `json:"line_items"`
}

const (
	OrderStatusProcessing = "processing"
	PaymentMethodCOD      = "cod"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	SKU           string     `json:"sku"`
	Status        string     `json:"status"`
	Price         string     `json:"price"`
	RegularPrice  string     `json:"regular_price"`
	SalePrice     string     `json:"sale_price"`
	StockQuantity *int       `json:"stock_quantity"`
	StockStatus   string     `json:"stock_status"`
	Weight        string     `json:"weight"`
	Categories    []Category `json:"categories"`
}
