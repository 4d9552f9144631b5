package colissimo

// ============================================================================
// generateLabel JSON payload. Every optional leaf is omitempty: the service
// rejects null fields.
// ============================================================================

// LabelPayload is the body of a generateLabel request.
type LabelPayload struct {
	ContractNumber string        `json:"contractNumber"`
	Password       string        `json:"password"`
	OutputFormat   OutputFormat  `json:"outputFormat"`
	Letter         Letter        `json:"letter"`
	Fields         *CustomFields `json:"fields,omitempty"`
}

// OutputFormat positions and selects the printing type of the label.
type OutputFormat struct {
	X                  int    `json:"x"`
	Y                  int    `json:"y"`
	OutputPrintingType string `json:"outputPrintingType"`
}

// Letter describes the parcel announcement.
type Letter struct {
	Service             Service              `json:"service"`
	Parcel              Parcel               `json:"parcel"`
	Sender              Sender               `json:"sender"`
	Addressee           Addressee            `json:"addressee"`
	CustomsDeclarations *CustomsDeclarations `json:"customsDeclarations,omitempty"`
}

// Service selects the product and billing of the shipment.
type Service struct {
	CommercialName   string `json:"commercialName,omitempty"`
	ProductCode      string `json:"productCode"`
	DepositDate      string `json:"depositDate"`
	TotalAmount      int64  `json:"totalAmount"` // Cents
	ReturnTypeChoice string `json:"returnTypeChoice,omitempty"`
	OrderNumber      string `json:"orderNumber,omitempty"`
}

// Parcel holds the physical parcel information.
type Parcel struct {
	Weight           float64 `json:"weight"`
	PickupLocationID string  `json:"pickupLocationId,omitempty"`
	InsuranceValue   int64   `json:"insuranceValue,omitempty"` // Cents
}

// Sender is the shipping party.
type Sender struct {
	SenderParcelRef string  `json:"senderParcelRef,omitempty"`
	Address         Address `json:"address"`
}

// Addressee is the receiving party.
type Addressee struct {
	AddresseeParcelRef string  `json:"addresseeParcelRef,omitempty"`
	Address            Address `json:"address"`
}

// Address is a trimmed postal address.
type Address struct {
	CompanyName  string `json:"companyName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	Line0        string `json:"line0,omitempty"`
	Line1        string `json:"line1,omitempty"`
	Line2        string `json:"line2,omitempty"`
	Line3        string `json:"line3,omitempty"`
	CountryCode  string `json:"countryCode,omitempty"`
	City         string `json:"city,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	DoorCode1    string `json:"doorCode1,omitempty"`
	DoorCode2    string `json:"doorCode2,omitempty"`
	Email        string `json:"email,omitempty"`
	Intercom     string `json:"intercom,omitempty"`
}

// CustomsDeclarations is the CN23 block.
type CustomsDeclarations struct {
	IncludeCustomsDeclarations int      `json:"includeCustomsDeclarations"`
	ImportersReference         string   `json:"importersReference,omitempty"`
	Contents                   Contents `json:"contents"`
}

// Contents lists the declared articles.
type Contents struct {
	Article  []Article `json:"article,omitempty"`
	Category Category  `json:"category"`
}

// Article is one declared article.
type Article struct {
	Description   string  `json:"description,omitempty"`
	Quantity      int     `json:"quantity"`
	Weight        float64 `json:"weight"`
	Value         float64 `json:"value"`
	OriginCountry string  `json:"originCountry,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	HSCode        string  `json:"hsCode,omitempty"`
}

// Category is the nature of the shipment.
type Category struct {
	Value int `json:"value"`
}

// CustomFields carries extra key/value fields such as the EORI number.
type CustomFields struct {
	CustomField []CustomField `json:"customField"`
}

// CustomField is a single key/value field.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
