package models

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CustomerForm carries the admin form fields. It is bound from JSON bodies
// and from multipart forms alike.
type CustomerForm struct {
	Name          string   `json:"name" form:"name"`
	Measurements  string   `json:"measurements" form:"measurements"`
	OutfitName    string   `json:"outfitName" form:"outfitName"`
	Fabric        string   `json:"fabric" form:"fabric"`
	Date          string   `json:"date" form:"date"`
	Images        []string `json:"images" form:"images"`
	InvoiceAmount string   `json:"invoiceAmount" form:"invoiceAmount"`
	InvoicePaid   bool     `json:"invoicePaid" form:"invoicePaid"`
}

// Customer converts the form into a record carrying the given id.
func (f CustomerForm) Customer(id string) Customer {
	images := f.Images
	if images == nil {
		images = []string{}
	}
	return Customer{
		ID:           id,
		Name:         f.Name,
		Measurements: f.Measurements,
		OutfitName:   f.OutfitName,
		Fabric:       f.Fabric,
		Date:         f.Date,
		Images:       images,
		Invoice:      &Invoice{Amount: f.InvoiceAmount, Paid: f.InvoicePaid},
	}
}

// FormFromCustomer prefills the form with a stored record.
func FormFromCustomer(c Customer) CustomerForm {
	invoice := c.InvoiceOrDefault()
	return CustomerForm{
		Name:          c.Name,
		Measurements:  c.Measurements,
		OutfitName:    c.OutfitName,
		Fabric:        c.Fabric,
		Date:          c.Date,
		Images:        append([]string{}, c.Images...),
		InvoiceAmount: invoice.Amount,
		InvoicePaid:   invoice.Paid,
	}
}
