package models

import "time"

// TableArea is the floor plan zone a table sits in.
type TableArea string

const (
	AreaIndoor   TableArea = "indoor"
	AreaWindow   TableArea = "window"
	AreaGarden   TableArea = "garden"
	AreaOutdoor  TableArea = "outdoor"
	AreaBar      TableArea = "bar"
	AreaTerrace  TableArea = "terrace"
	AreaCommunal TableArea = "communal"
)

// Valid reports whether a is one of the known areas.
func (a TableArea) Valid() bool {
	switch a {
	case AreaIndoor, AreaWindow, AreaGarden, AreaOutdoor, AreaBar, AreaTerrace, AreaCommunal:
		return true
	}
	return false
}

// TableStatus is fixed for the lifetime of a session.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

// Table is one seat group of a venue floor plan
type Table struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Capacity int         `json:"capacity"`
	Area     TableArea   `json:"area"`
	Status   TableStatus `json:"status"`
}

// FloorPlan lists the tables of a cafe
type FloorPlan struct {
	CafeID string  `json:"cafeId"`
	Tables []Table `json:"tables"`
}

// Cafe represents a venue in the catalog
type Cafe struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Rating              float64  `json:"rating"`
	RatingCount         int      `json:"ratingCount"`
	PriceLevel          string   `json:"priceLevel"`
	Address             string   `json:"address"`
	City                string   `json:"city"`
	DistanceMinutesWalk int      `json:"distanceMinutesWalk"`
	IsOpenNow           bool     `json:"isOpenNow"`
	Tags                []string `json:"tags"`
	Category            string   `json:"category"`
}

// MenuItem is a single offering on a cafe menu
type MenuItem struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Popular     bool   `json:"popular,omitempty"`
}

// Payment methods
const (
	PaymentCreditCard     = "credit_card"
	PaymentDebitCard      = "debit_card"
	PaymentAppleGooglePay = "apple_google_pay"
	PaymentCash           = "cash"
)

// ReservationState is the in-progress reservation of a session. Nil pointers
// serialize as null, mirroring unset fields of the stored snapshot.
type ReservationState struct {
	CafeID          *string    `json:"cafeId"`
	PartySize       *int       `json:"partySize"`
	DurationMinutes *int       `json:"durationMinutes"`
	TableID         *string    `json:"tableId"`
	TableLabel      *string    `json:"tableLabel"`
	TableArea       *TableArea `json:"tableArea"`
	Notes           string     `json:"notes"`
	TotalPrice      *int64     `json:"totalPrice"`
	PaymentMethod   *string    `json:"paymentMethod"`
	CardLast4       *string    `json:"cardLast4"`
	ReservationCode *string    `json:"reservationCode"`
	TransactionID   *string    `json:"transactionId"`
	CreatedAt       *time.Time `json:"createdAt"`
}

// CartItem is one line of the live cart
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// OrderStatus is the client observed lifecycle of a placed order
type OrderStatus string

const (
	OrderStatusIdle      OrderStatus = "idle"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PlacedOrder is the frozen snapshot of a confirmed cart
type PlacedOrder struct {
	OrderID             string      `json:"orderId"`
	TableNumber         string      `json:"tableNumber"`
	Items               []CartItem  `json:"items"`
	Status              OrderStatus `json:"status"`
	SpecialInstructions string      `json:"specialInstructions"`
	Subtotal            int64       `json:"subtotal"`
	ServiceFee          int64       `json:"serviceFee"`
	Total               int64       `json:"total"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// OrderState is the whole in-venue ordering state of a session
type OrderState struct {
	CafeID              *string      `json:"cafeId"`
	TableID             *string      `json:"tableId"`
	TableNumber         string       `json:"tableNumber"`
	CartItems           []CartItem   `json:"cartItems"`
	OrderID             *string      `json:"orderId"`
	PlacedOrder         *PlacedOrder `json:"placedOrder"`
	OrderStatus         OrderStatus  `json:"orderStatus"`
	SpecialInstructions string       `json:"specialInstructions"`
	ServiceFeeRate      float64      `json:"serviceFeeRate"`
	PaymentMethod       *string      `json:"paymentMethod"`
}

// Bill is the VAT inclusive amount shown on the bill and payment pages.
// Its Total is not the same as PlacedOrder.Total, which excludes VAT.
type Bill struct {
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"serviceFee"`
	VAT        int64 `json:"vat"`
	Total      int64 `json:"total"`
}

// PastOrderItem is a billed line of a completed order
type PastOrderItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// PastOrder is an immutable billing snapshot kept in the account history
type PastOrder struct {
	ID            string          `json:"id"`
	CafeID        string          `json:"cafeId"`
	CafeName      string          `json:"cafeName"`
	Date          time.Time       `json:"date"`
	TableNumber   string          `json:"tableNumber"`
	Total         int64           `json:"total"`
	Status        string          `json:"status"`
	Items         []PastOrderItem `json:"items"`
	PaymentMethod string          `json:"paymentMethod"`
	CardLast4     *string         `json:"cardLast4"`
	Subtotal      int64           `json:"subtotal"`
	ServiceFee    int64           `json:"serviceFee"`
	VAT           int64           `json:"vat"`
}

// PastOrderCompleted is the only status a history entry carries
const PastOrderCompleted = "completed"

// User is the signed in account of a session
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       *string     `json:"phone"`
	Avatar      *string     `json:"avatar"`
	BirthDate   *string     `json:"birthDate"`
	MemberSince string      `json:"memberSince"`
	Favorites   []string    `json:"favorites"`
	Orders      []PastOrder `json:"orders"`
}

// Preference values
const (
	LanguageTurkish = "tr"
	LanguageEnglish = "en"
	ThemeLight      = "light"
	ThemeDark       = "dark"
)

// Preferences hold the language and theme choice of a session
type Preferences struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}
