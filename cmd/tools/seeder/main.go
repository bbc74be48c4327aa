package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

const demoShopID = "6d1f2a52-3c8e-4b7a-9f10-2e5b8c4d7a01"

type demoDiscount struct {
	Title           string
	Method          string
	Code            string
	Type            string
	ValueType       string
	Value           string
	Priority        int
	CombinesProduct bool
	CombinesOrder   bool
	CombinesShip    bool
	MinimumSubtotal string
	UsageLimit      *int
	PerCustomer     *int
	ProductIDs      []int64
	BuyProductIDs   []int64
	BuyQuantity     int
	GetProductIDs   []int64
	GetQuantity     int
	Repeat          bool
}

type demoZone struct {
	Name        string
	Code        string
	Country     string
	State       string
	PostalCodes []string
	Rate        string
	TaxShipping bool
	Priority    int
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	shopID := strings.TrimSpace(os.Getenv("DEFAULT_SHOP_ID"))
	if shopID == "" {
		shopID = demoShopID
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}
	log.Printf("Using shop ID: %s", shopID)

	seedDiscounts(db, shopID)
	seedTaxZones(db, shopID)

	log.Println("Seeding completed successfully!")
}

func intPtr(v int) *int { return &v }

func seedDiscounts(db *sql.DB, shopID string) {
	discounts := []demoDiscount{
		{Title: "Welcome 10%", Method: "code", Code: "WELCOME10", Type: "order", ValueType: "percentage", Value: "10", Priority: 10, CombinesShip: true, PerCustomer: intPtr(1)},
		{Title: "Five off fifty", Method: "code", Code: "SAVE5", Type: "order", ValueType: "fixed", Value: "5", Priority: 5, MinimumSubtotal: "50", UsageLimit: intPtr(500)},
		{Title: "Headphones 20%", Method: "code", Code: "AUDIO20", Type: "product", ValueType: "percentage", Value: "20", Priority: 5, CombinesOrder: true, ProductIDs: []int64{1004, 1005}},
		{Title: "Free shipping", Method: "code", Code: "FREESHIP", Type: "shipping", ValueType: "percentage", Value: "100", CombinesProduct: true, CombinesOrder: true},
		{Title: "Spend 100 ship free", Method: "automatic", Type: "shipping", ValueType: "percentage", Value: "100", Priority: 1, MinimumSubtotal: "100", CombinesProduct: true, CombinesOrder: true},
		{Title: "Buy 2 tees get 1", Method: "automatic", Type: "buy_x_get_y", Priority: 3, BuyProductIDs: []int64{2001}, BuyQuantity: 2, GetProductIDs: []int64{2001}, GetQuantity: 1, Repeat: true},
	}

	fmt.Println("Seeding Discounts...")
	for _, d := range discounts {
		var code any
		if d.Code != "" {
			code = d.Code
		}
		valueType := d.ValueType
		if valueType == "" {
			valueType = "percentage"
		}
		value := d.Value
		if value == "" {
			value = "0"
		}
		minimum := d.MinimumSubtotal
		if minimum == "" {
			minimum = "0"
		}
		_, err := db.Exec(`
			INSERT INTO discounts (
				shop_id, title, method, code, type, value_type, value, priority,
				combines_with_product_discounts, combines_with_order_discounts, combines_with_shipping_discounts,
				minimum_subtotal, usage_limit, per_customer_limit,
				product_ids, buy_product_ids, buy_quantity, get_product_ids, get_quantity, repeat_offer
			)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
			WHERE NOT EXISTS (SELECT 1 FROM discounts WHERE shop_id = $1 AND title = $2);
		`, shopID, d.Title, d.Method, code, d.Type, valueType, value, d.Priority,
			d.CombinesProduct, d.CombinesOrder, d.CombinesShip,
			minimum, d.UsageLimit, d.PerCustomer,
			pq.Array(orEmpty(d.ProductIDs)), pq.Array(orEmpty(d.BuyProductIDs)), d.BuyQuantity,
			pq.Array(orEmpty(d.GetProductIDs)), d.GetQuantity, d.Repeat)
		if err != nil {
			log.Printf("Failed to seed discount %s: %v", d.Title, err)
		}
	}
}

func seedTaxZones(db *sql.DB, shopID string) {
	zones := []demoZone{
		{Name: "Netherlands", Code: "NL", Country: "NL", Rate: "0.21", TaxShipping: true},
		{Name: "Germany", Code: "DE", Country: "DE", Rate: "0.19", TaxShipping: true},
		{Name: "Heligoland", Code: "DE-HELGOLAND", Country: "DE", PostalCodes: []string{"27498"}, Rate: "0", TaxShipping: false, Priority: 10},
		{Name: "California", Code: "US-CA", Country: "US", State: "CA", Rate: "0.0725", TaxShipping: false},
		{Name: "Indonesia", Code: "ID", Country: "ID", Rate: "0.11", TaxShipping: true},
	}

	fmt.Println("Seeding Tax Zones...")
	for _, z := range zones {
		var state any
		if z.State != "" {
			state = z.State
		}
		postal := z.PostalCodes
		if postal == nil {
			postal = []string{}
		}
		_, err := db.Exec(`
			INSERT INTO tax_zones (shop_id, name, code, country, state, postal_codes, rate, tax_shipping, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (shop_id, code) DO UPDATE SET rate = EXCLUDED.rate, name = EXCLUDED.name;
		`, shopID, z.Name, z.Code, z.Country, state, pq.Array(postal), z.Rate, z.TaxShipping, z.Priority)
		if err != nil {
			log.Printf("Failed to seed tax zone %s: %v", z.Code, err)
		}
	}
}

func orEmpty(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
