package internal

// Row is one decoded input line, keyed by header name. Columns missing
// from a short line are simply absent from the map.
type Row map[string]string

type DocumentGroup struct {
	ID   string
	Rows []Row
}

type ValidationError struct {
	RowID   string   `json:"rowId"`
	Line    int      `json:"line"`
	Missing []string `json:"missingFields"`
}

type GroupingError struct {
	GroupID string `json:"groupId"`
	Message string `json:"message"`
}

type BatchError struct {
	ExternalID       int    `json:"externalId"`
	Message          string `json:"message"`
	RemoteDocumentID *int   `json:"remoteDocumentId"`
}

type NumberTemplate struct {
	ID                int    `json:"id"`
	DocumentType      string `json:"documentType"`
	Status            string `json:"status"`
	IsDefault         bool   `json:"isDefault"`
	NextInvoiceNumber string `json:"nextInvoiceNumber"`
}

type NumberTemplateRef struct {
	ID int `json:"id"`
}

// percentaje is the field name the Alegra API actually uses.
type BillItemTax struct {
	ID         int     `json:"id"`
	Percentaje float64 `json:"percentaje"`
}

type BillItem struct {
	ID           *int          `json:"id,omitempty"`
	Name         string        `json:"name,omitempty"`
	Discount     float64       `json:"discount"`
	Observations string        `json:"observations,omitempty"`
	Quantity     *int          `json:"quantity,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	Total        *float64      `json:"total,omitempty"`
	Subtotal     *float64      `json:"subtotal,omitempty"`
	Tax          []BillItemTax `json:"tax"`
}

type Purchases struct {
	Items []BillItem `json:"items"`
}

type Retention struct {
	ID     *int     `json:"id,omitempty"`
	Amount *float64 `json:"amount,omitempty"`
}

type Currency struct {
	Code         string   `json:"code"`
	ExchangeRate *float64 `json:"exchangeRate,omitempty"`
}

type Stamp struct {
	GenerateStamp bool `json:"generateStamp"`
}

// Bill is the request shape for POST /bills. ExternalID is the input
// group id and never goes over the wire.
type Bill struct {
	ExternalID        int               `json:"-"`
	Purchases         Purchases         `json:"purchases"`
	NumberTemplate    NumberTemplateRef `json:"numberTemplate"`
	Date              string            `json:"date"`
	DueDate           string            `json:"dueDate"`
	TermsConditions   string            `json:"termsConditions,omitempty"`
	PaymentMethod     string            `json:"paymentMethod"`
	PaymentType       string            `json:"paymentType"`
	BillOperationType string            `json:"billOperationType"`
	Provider          *int              `json:"provider,omitempty"`
	Observations      string            `json:"observations,omitempty"`
	Retentions        []Retention       `json:"retentions"`
	Currency          *Currency         `json:"currency,omitempty"`
	Stamp             Stamp             `json:"stamp"`
}

type BatchReport struct {
	TraceID        string          `json:"traceId"`
	Rows           int             `json:"rows"`
	Groups         int             `json:"groups"`
	Submitted      int             `json:"submitted"`
	GroupingErrors []GroupingError `json:"groupingErrors"`
	BatchErrors    []BatchError    `json:"batchErrors"`
}
