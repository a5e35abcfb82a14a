package shipment

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightKilogram WeightUnit = "kilogram"
	WeightOunce    WeightUnit = "ounce"
	WeightPound    WeightUnit = "pound"
	WeightGram     WeightUnit = "gram"
)

// Weight is the weight of a single package.
type Weight struct {
	Value float64    `json:"value" dynamodbav:"value"`
	Unit  WeightUnit `json:"unit" dynamodbav:"unit"`
}

// ShippingAddress is the destination of a shipment.
type ShippingAddress struct {
	AddressLine1 string `json:"addressLine1" dynamodbav:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty" dynamodbav:"addressLine2,omitempty"`
	City         string `json:"city" dynamodbav:"city"`
	CompanyName  string `json:"companyName" dynamodbav:"companyName"`
	Country      string `json:"country" dynamodbav:"country"`
	Name         string `json:"name" dynamodbav:"name"`
	PhoneNumber  string `json:"phoneNumber" dynamodbav:"phoneNumber"`
	Postcode     string `json:"postcode" dynamodbav:"postcode"`
	State        string `json:"state" dynamodbav:"state"`
}

// Rate is a single carrier quote. Amounts are nil when the carrier
// did not report them.
type Rate struct {
	ID                    string   `json:"id" dynamodbav:"id"`
	Carrier               string   `json:"carrier" dynamodbav:"carrier"`
	CarrierCode           string   `json:"carrierCode" dynamodbav:"carrierCode"`
	CarrierID             string   `json:"carrierId" dynamodbav:"carrierId"`
	ConfirmationAmount    *float64 `json:"confirmationAmount,omitempty" dynamodbav:"confirmationAmount,omitempty"`
	Currency              string   `json:"currency" dynamodbav:"currency"`
	DeliveryDays          int      `json:"deliveryDays" dynamodbav:"deliveryDays"`
	EstimatedDeliveryDate string   `json:"estimatedDeliveryDate" dynamodbav:"estimatedDeliveryDate"`
	InsuranceAmount       *float64 `json:"insuranceAmount,omitempty" dynamodbav:"insuranceAmount,omitempty"`
	ServiceCode           string   `json:"serviceCode" dynamodbav:"serviceCode"`
	ShipDate              string   `json:"shipDate" dynamodbav:"shipDate"`
	ShipmentAmount        *float64 `json:"shipmentAmount,omitempty" dynamodbav:"shipmentAmount,omitempty"`
	Trackable             bool     `json:"trackable" dynamodbav:"trackable"`
}

// Shipment is an address, a weight and the rates quoted for them,
// identified by the carrier-assigned shipment id.
type Shipment struct {
	ID              string          `json:"id" dynamodbav:"id"`
	Rates           []Rate          `json:"rates" dynamodbav:"rates"`
	ShippingAddress ShippingAddress `json:"shippingAddress" dynamodbav:"shippingAddress"`
	Weight          Weight          `json:"weight" dynamodbav:"weight"`
}

// FetchRatesPayload is the input for fetching rates.
type FetchRatesPayload struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Weight          Weight          `json:"weight"`
}
